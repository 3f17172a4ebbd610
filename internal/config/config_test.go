/*
 * MIT License
 *
 * Copyright (c) 2026 rusty-comms authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config_test

import (
	"testing"

	"github.com/redhat-performance/rusty-comms/internal/config"
)

func validConfig(m config.Mechanism) config.TestConfig {
	c := config.Defaults(m)
	c.Termination.Count = 1000
	if m == config.TCP {
		c.Port = 9000
	}
	return c
}

func TestDefaultsAreValid(t *testing.T) {
	for _, m := range config.All() {
		c := validConfig(m)
		if err := c.Validate(); err != nil {
			t.Errorf("Defaults(%s) invalid: %v", m, err)
		}
	}
}

func TestValidateRejectsUnknownMechanism(t *testing.T) {
	c := validConfig(config.UDS)
	c.Mechanism = "bogus"
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for unknown mechanism")
	}
}

func TestValidateRejectsBothCountAndDuration(t *testing.T) {
	c := validConfig(config.UDS)
	c.Termination.Duration = 1
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for count+duration both set")
	}
}

func TestValidateRejectsNeitherCountNorDuration(t *testing.T) {
	c := validConfig(config.UDS)
	c.Termination.Count = 0
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error when neither count nor duration is set")
	}
}

func TestValidateRejectsNoDirection(t *testing.T) {
	c := validConfig(config.UDS)
	c.OneWay = false
	c.RoundTrip = false
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error when neither direction is enabled")
	}
}

func TestValidateRejectsOutOfRangePercentile(t *testing.T) {
	c := validConfig(config.UDS)
	c.Percentiles = []float64{50, 100}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for percentile >= 100")
	}
}

func TestNormalizeForcesShmConcurrencyToOne(t *testing.T) {
	c := validConfig(config.SHM)
	c.Concurrency = 4

	out, warned := c.Normalize()
	if !warned {
		t.Error("Normalize() warned = false, want true")
	}
	if out.Concurrency != 1 {
		t.Errorf("Normalize() concurrency = %d, want 1", out.Concurrency)
	}
	if c.Concurrency != 4 {
		t.Error("Normalize() mutated the receiver")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := validConfig(config.UDS)
	clone := c.Clone()
	clone.Percentiles[0] = 1

	if c.Percentiles[0] == 1 {
		t.Error("Clone() shares the Percentiles backing array with the original")
	}
}

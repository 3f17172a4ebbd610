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

package ierrs

import "fmt"

// Mode controls how much detail Error() renders. The console summary wants
// the bare message; the detailed log (-vv) wants the call-site trace too.
type Mode uint8

const (
	// Message renders only the error's own text.
	Message Mode = iota
	// MessageKind renders the Kind alongside the message.
	MessageKind
	// MessageKindTrace additionally renders the originating call site.
	MessageKindTrace
)

var modeError = Message

// SetMode sets the package-wide rendering mode used by Error(). The driver
// sets this once at startup from the -v/-vv flags.
func SetMode(m Mode) { modeError = m }

// GetMode returns the current package-wide rendering mode.
func GetMode() Mode { return modeError }

func (m Mode) render(e *ers) string {
	switch m {
	case MessageKind:
		return fmt.Sprintf("[%s] %s", e.k, e.m)
	case MessageKindTrace:
		if t := e.trace(); t != "" {
			return fmt.Sprintf("[%s] %s (%s)", e.k, e.m, t)
		}
		return fmt.Sprintf("[%s] %s", e.k, e.m)
	default:
		return e.m
	}
}

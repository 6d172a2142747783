// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// File: cmd/shell.go
package cmd

import (
	"strings"
)

// Invocation is one external command as an explicit argument list.
// It is executed directly, without an intermediate shell.
type Invocation struct {
	// Dir is the working directory; empty means the current directory.
	Dir  string
	Name string
	Args []string
}

// String renders the command for dry-run output and logs.
func (i Invocation) String() string {
	return strings.Join(append([]string{i.Name}, i.Args...), " ")
}

// Script renders the invocation as a single shell command line in which
// every token survives `sh -c` unchanged.
func (i Invocation) Script() string {
	return ShellJoin(append([]string{i.Name}, i.Args...))
}

// shellSpecial lists the characters a POSIX shell treats specially
// outside of quotes.
const shellSpecial = " \t'\"\\$`;&|<>()*?[]{}#~!"

// ShellEscape renders s as one shell word. Every special character is
// backslash-escaped, so app='x' becomes app=\'x\'.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	var b strings.Builder
	// bytes, not runes: arguments need not be valid UTF-8
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n':
			// backslash-newline is a line continuation
			b.WriteString("\"\n\"")
		case strings.IndexByte(shellSpecial, c) >= 0:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ShellJoin escapes each argument and joins them with single spaces.
func ShellJoin(args []string) string {
	escaped := make([]string, len(args))
	for i, a := range args {
		escaped[i] = ShellEscape(a)
	}
	return strings.Join(escaped, " ")
}

// SecretsWrapper scopes an invocation to decrypted secrets using a
// sops-compatible tool.
type SecretsWrapper struct {
	Tool string
}

// ExecEnv decrypts file into environment variables for the duration of inv.
func (w SecretsWrapper) ExecEnv(file string, inv Invocation) Invocation {
	return Invocation{
		Dir:  inv.Dir,
		Name: w.Tool,
		Args: []string{"exec-env", file, inv.Script()},
	}
}

// ExecFile decrypts file to a temporary path and exposes that path to inv
// through the environment variable envVar.
func (w SecretsWrapper) ExecFile(file, envVar string, inv Invocation) Invocation {
	return Invocation{
		Dir:  inv.Dir,
		Name: w.Tool,
		Args: []string{"exec-file", file, envVar + "={} " + inv.Script()},
	}
}

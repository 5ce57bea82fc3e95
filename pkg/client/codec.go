// Copyright 2025 Tom Barlow
//
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

package client

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/klauspost/compress/zlib"
)

// encodedLineLength matches the MIME base64 layout used by the service.
const encodedLineLength = 76

// Encode compresses data with zlib and returns it base64 encoded, split into
// newline-terminated lines of 76 characters.
func Encode(data string) string {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	// Writes into a bytes.Buffer cannot fail.
	_, _ = zw.Write([]byte(data))
	_ = zw.Close()

	enc := base64.StdEncoding.EncodeToString(buf.Bytes())

	var out strings.Builder
	out.Grow(len(enc) + len(enc)/encodedLineLength + 1)
	for len(enc) > 0 {
		n := min(encodedLineLength, len(enc))
		out.WriteString(enc[:n])
		out.WriteByte('\n')
		enc = enc[n:]
	}
	return out.String()
}

// Decode reverses Encode. Line breaks and other whitespace are ignored.
func Decode(data string) (string, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	compressed, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return "", fmt.Errorf("decoding base64: %w", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("opening zlib stream: %w", err)
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("inflating: %w", err)
	}
	return string(plain), nil
}

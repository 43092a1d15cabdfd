package lsp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRPCFramingMultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	msg1 := []byte(`{"jsonrpc":"2.0","method":"one"}`)
	msg2 := []byte(`{"jsonrpc":"2.0","method":"two"}`)
	require.NoError(t, writeMessage(&buf, msg1))
	require.NoError(t, writeMessage(&buf, msg2))

	reader := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	got1, err := readMessage(reader)
	require.NoError(t, err)
	got2, err := readMessage(reader)
	require.NoError(t, err)
	assert.Equal(t, string(msg1), string(got1))
	assert.Equal(t, string(msg2), string(got2))
}

func TestJSONRPCHeaders(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{
			name:  "extra header",
			input: "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\ncontent-length: 2\r\n\r\n{}",
			want:  "{}",
		},
		{
			name:    "missing length",
			input:   "Content-Type: x\r\n\r\n{}",
			wantErr: "missing Content-Length",
		},
		{
			name:    "bad length",
			input:   "Content-Length: abc\r\n\r\n",
			wantErr: "invalid Content-Length",
		},
		{
			name:    "negative length",
			input:   "Content-Length: -1\r\n\r\n",
			wantErr: "out of range",
		},
		{
			name:    "short body",
			input:   "Content-Length: 10\r\n\r\n{}",
			wantErr: "read body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readMessage(bufio.NewReader(strings.NewReader(tt.input)))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

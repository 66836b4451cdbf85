package docker

import (
	"bufio"
	"errors"
	"io"

	"github.com/docker/docker/pkg/stdcopy"
)

// headerLen is the size of the Docker stream multiplexing header:
// [STREAM_TYPE][0x00][0x00][0x00][SIZE (4 bytes)]
const headerLen = 8

// copyLogStream writes a container log stream to dst as plain text.
// Containers without a TTY multiplex stdout/stderr with 8-byte frame headers, which are
// stripped; TTY streams are raw and copied as-is.
func copyLogStream(dst io.Writer, src io.Reader) error {
	br := bufio.NewReader(src)

	header, err := br.Peek(headerLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if isMultiplexed(header) {
		_, err = stdcopy.StdCopy(dst, dst, br)
		return err
	}

	_, err = io.Copy(dst, br)
	return err
}

// isMultiplexed reports whether header looks like a stdcopy frame header.
func isMultiplexed(header []byte) bool {
	if len(header) < headerLen {
		return false
	}
	switch header[0] {
	case byte(stdcopy.Stdin), byte(stdcopy.Stdout), byte(stdcopy.Stderr):
	default:
		return false
	}
	return header[1] == 0 && header[2] == 0 && header[3] == 0
}

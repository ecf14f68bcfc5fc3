package gpio

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// PortNode is one character device exposing a single byte-wide port.
type PortNode struct {
	Path     string `yaml:"path"`
	Writable bool   `yaml:"writable"`
}

// CharPorts drives a parallel I/O card whose ports are separate device nodes
// (e.g. /dev/pbio0a). One byte read or written per access.
type CharPorts struct {
	files []*os.File
}

// OpenCharPorts zeroes every port and reopens it in its configured mode.
func OpenCharPorts(nodes []PortNode) (*CharPorts, error) {
	c := &CharPorts{}
	for _, n := range nodes {
		if err := zeroPort(n.Path); err != nil {
			c.Close()
			return nil, err
		}
		flag := os.O_RDONLY
		if n.Writable {
			flag = os.O_RDWR
		}
		f, err := os.OpenFile(n.Path, flag, 0)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("open %s: %w", n.Path, err)
		}
		c.files = append(c.files, f)
	}
	return c, nil
}

func zeroPort(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write([]byte{0}); err != nil {
		f.Close()
		return fmt.Errorf("zero %s: %w", path, err)
	}
	return f.Close()
}

func (c *CharPorts) file(port int) (*os.File, error) {
	if port < 0 || port >= len(c.files) {
		return nil, fmt.Errorf("port %d out of range (%d ports)", port, len(c.files))
	}
	return c.files[port], nil
}

// ReadPort reads one byte from the port's device node.
func (c *CharPorts) ReadPort(port int) (uint8, error) {
	f, err := c.file(port)
	if err != nil {
		return 0, err
	}
	var buf [1]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return 0, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	return buf[0], nil
}

// WritePort writes one byte to the port's device node.
func (c *CharPorts) WritePort(port int, v uint8) error {
	f, err := c.file(port)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte{v}); err != nil {
		return fmt.Errorf("write %s: %w", f.Name(), err)
	}
	return nil
}

// Close closes every device node.
func (c *CharPorts) Close() error {
	var errs []error
	for _, f := range c.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.files = nil
	return errors.Join(errs...)
}

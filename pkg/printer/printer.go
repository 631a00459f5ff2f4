package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Printer sends raw ESC/POS data to a thermal printer.
type Printer interface {
	// Print sends raw ESC/POS bytes to the printer.
	Print(ctx context.Context, data []byte) error
	// IsConnected reports whether the printer is reachable right now.
	IsConnected(ctx context.Context) bool
}

// Config selects and addresses a printer.
type Config struct {
	Type    string // usb, network, none
	USBPath string // e.g. /dev/usb/lp0
	Address string // e.g. 192.168.1.100:9100
	Width   int    // characters per line; 32 for 58mm paper, 48 for 80mm
}

// --- USB Printer (writes to a device file) ---

type usbPrinter struct {
	path string
	mu   sync.Mutex
}

// NewUSBPrinter creates a printer that writes to a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// One job at a time; interleaved writes garble the paper.
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: failed to open USB device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to USB device %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) IsConnected(context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network Printer (raw TCP, usually port 9100) ---

type networkPrinter struct {
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

// NewNetworkPrinter creates a printer that connects via TCP.
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{
		address:      address,
		dialTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

func (p *networkPrinter) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	return d.DialContext(ctx, "tcp", p.address)
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dial(ctx, p.dialTimeout)
	if err != nil {
		return fmt.Errorf("printer: failed to connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(p.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) IsConnected(ctx context.Context) bool {
	conn, err := p.dial(ctx, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Null Printer (no-op, used when no printer is configured) ---

type nullPrinter struct{}

// NewNullPrinter creates a no-op printer for environments without hardware.
func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Print(context.Context, []byte) error { return nil }

func (nullPrinter) IsConnected(context.Context) bool { return false }

// New creates the Printer described by cfg.
func New(cfg Config) (Printer, error) {
	switch cfg.Type {
	case "usb":
		if cfg.USBPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(cfg.USBPath), nil
	case "network":
		if cfg.Address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(cfg.Address), nil
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", cfg.Type)
	}
}

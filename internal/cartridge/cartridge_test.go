package cartridge

import (
	"testing"

	"github.com/retrocoderamen/gbcore/internal/rom"
)

func TestROMHeaderAcceptance(t *testing.T) {
	b := rom.NewBuilder("TESTROM", 0x00, 0x00, 0x00)
	c, err := Load(b.Bytes(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Header.Title != "TESTROM" {
		t.Fatalf("Title = %q, want TESTROM", c.Header.Title)
	}
	if len(c.rom) != 32*1024 {
		t.Fatalf("ROM size = %d, want a single 32 KiB bank", len(c.rom))
	}
}

func TestHeaderChecksumAllZeros(t *testing.T) {
	data := make([]byte, 0x150)
	data[offChecksum] = 0xE7
	if _, err := ParseHeader(data); err != nil {
		t.Fatalf("expected all-zero header with checksum 0xE7 to validate: %v", err)
	}
}

func TestMBC1BankSwitch(t *testing.T) {
	b := rom.NewBuilder("BANKTEST", 0x01, 0x02, 0x00) // MBC1, 128 KiB
	b.SetByte(0xC000, 0xA5)                           // CPU addr 0x4000 under bank 3

	c, err := Load(b.Bytes(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	c.Write(0x2000, 0x03)
	if got := c.Read(0x4000); got != 0xA5 {
		t.Fatalf("bank 3 read = %#x, want 0xA5", got)
	}

	c.Write(0x2000, 0x01)
	want := b.Bytes()[0x4000]
	if got := c.Read(0x4000); got != want {
		t.Fatalf("bank 1 read = %#x, want %#x", got, want)
	}
}

func TestMBC1ZeroBankBump(t *testing.T) {
	b := rom.NewBuilder("ZEROTEST", 0x01, 0x02, 0x00)
	c, _ := Load(b.Bytes(), "")

	c.Write(0x2000, 0x00) // would select bank 0, must bump to 1
	got := c.Read(0x4000)
	want := b.Bytes()[0x4000] // bank 1 content
	if got != want {
		t.Fatalf("bank-0 write did not bump to bank 1: got %#x, want %#x", got, want)
	}
}

func TestMBC1RAMGating(t *testing.T) {
	b := rom.NewBuilder("RAMTEST", 0x03, 0x00, 0x02) // MBC1+RAM+battery, 8 KiB RAM
	c, _ := Load(b.Bytes(), "")

	if got := c.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read = %#x, want 0xFF", got)
	}

	c.Write(0x0000, 0x0A) // enable RAM
	c.Write(0xA000, 0x42)
	if got := c.Read(0xA000); got != 0x42 {
		t.Fatalf("RAM read = %#x, want 0x42", got)
	}
	if !c.IsRAMDirty() {
		t.Fatal("expected RAM dirty after enabled write")
	}
}

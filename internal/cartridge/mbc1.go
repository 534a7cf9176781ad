package cartridge

// mbc1 implements the classic 5-bit+2-bit ROM/RAM bank-switching
// controller. The real mode-1 upper-bits-affect-bank-0 quirk is
// deliberately not modeled (see spec's Open Questions).
type mbc1 struct {
	rom, ram []byte

	romBankLow5  uint8
	romBankHigh2 uint8
	ramBank      uint8
	ramEnable    bool
	mode         uint8
}

func (m *mbc1) effectiveROMBank() uint8 {
	return m.romBankHigh2<<5 | m.romBankLow5
}

func (m *mbc1) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	}
	bank := m.effectiveROMBank()
	offset := int(bank)*0x4000 + int(addr-0x4000)
	if offset < len(m.rom) {
		return m.rom[offset]
	}
	return 0xFF
}

func (m *mbc1) WriteROM(addr uint16, v uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnable = v&0x0F == 0x0A
	case addr < 0x4000:
		low := v & 0x1F
		if low == 0 {
			low = 1
		}
		m.romBankLow5 = low
	case addr < 0x6000:
		if m.mode == 0 {
			m.romBankHigh2 = v & 0x03
		} else {
			m.ramBank = v & 0x03
		}
	default:
		m.mode = v & 0x01
	}
}

func (m *mbc1) ramOffset(addr uint16) int {
	bank := uint8(0)
	if m.mode == 1 {
		bank = m.ramBank
	}
	return int(bank)*0x2000 + int(addr-0xA000)
}

func (m *mbc1) ReadRAM(addr uint16) uint8 {
	if !m.ramEnable {
		return 0xFF
	}
	off := m.ramOffset(addr)
	if off >= 0 && off < len(m.ram) {
		return m.ram[off]
	}
	return 0xFF
}

func (m *mbc1) WriteRAM(addr uint16, v uint8) {
	if !m.ramEnable {
		return
	}
	off := m.ramOffset(addr)
	if off >= 0 && off < len(m.ram) {
		m.ram[off] = v
	}
}

func (m *mbc1) snapshot() MBCState {
	return MBCState{
		ROMBankLow5: m.romBankLow5, ROMBankHigh2: m.romBankHigh2,
		RAMBank: m.ramBank, RAMEnable: m.ramEnable, Mode: m.mode,
	}
}

func (m *mbc1) restore(s MBCState) {
	m.romBankLow5, m.romBankHigh2 = s.ROMBankLow5, s.ROMBankHigh2
	m.ramBank, m.ramEnable, m.mode = s.RAMBank, s.RAMEnable, s.Mode
}

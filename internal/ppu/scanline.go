package ppu

// renderLine renders scanline ly into FrameBuffer: background, then
// window overlay, then sprites, in that priority order.
func (p *PPU) renderLine(ly uint8) {
	for x := 0; x < ScreenWidth; x++ {
		p.bgRaw[x] = 0
		p.FrameBuffer[int(ly)*ScreenWidth+x] = Palette[0]
	}

	if p.lcdc&0x01 != 0 {
		p.renderBackground(ly)
	}
	if p.lcdc&0x20 != 0 {
		p.renderWindow(ly)
	}
	if p.lcdc&0x02 != 0 {
		p.renderSprites(ly)
	}
}

func (p *PPU) bgTileMapBase() uint16 {
	if p.lcdc&0x08 != 0 {
		return 0x9C00
	}
	return 0x9800
}

func (p *PPU) windowTileMapBase() uint16 {
	if p.lcdc&0x40 != 0 {
		return 0x9C00
	}
	return 0x9800
}

func (p *PPU) tileDataAddr(tileIdx uint8) uint16 {
	if p.lcdc&0x10 != 0 {
		return 0x8000 + uint16(tileIdx)*16
	}
	return uint16(int32(0x9000) + int32(int8(tileIdx))*16)
}

func (p *PPU) vram(addr uint16) uint8 {
	off := int(addr) - 0x8000
	if off < 0 || off >= len(p.VRAM) {
		return 0xFF
	}
	return p.VRAM[off]
}

func tilePixelIndex(lo, hi uint8, p uint8) uint8 {
	shift := 7 - p
	return (hi>>shift)&1<<1 | (lo>>shift)&1
}

func (p *PPU) renderBackground(ly uint8) {
	mapBase := p.bgTileMapBase()
	tileY := (uint16(ly) + uint16(p.scy)) / 8 & 0x1F
	rowInTile := (uint16(ly) + uint16(p.scy)) % 8

	for x := 0; x < ScreenWidth; x++ {
		tileX := (uint16(p.scx)/8 + uint16(x)/8) & 0x1F
		tileIdx := p.vram(mapBase + tileY*32 + tileX)
		addr := p.tileDataAddr(tileIdx) + rowInTile*2
		lo, hi := p.vram(addr), p.vram(addr+1)

		idx := tilePixelIndex(lo, hi, uint8(x%8))
		p.bgRaw[x] = idx
		p.FrameBuffer[int(ly)*ScreenWidth+x] = p.colorFor(p.bgp, idx)
	}
}

func (p *PPU) renderWindow(ly uint8) {
	if p.wx > 166 || p.wy > 143 || ly < p.wy {
		return
	}
	startCol := int(p.wx) - 7
	mapBase := p.windowTileMapBase()
	winY := uint16(ly) - uint16(p.wy)
	tileY := winY / 8 & 0x1F
	rowInTile := winY % 8

	for x := startCol; x < ScreenWidth; x++ {
		if x < 0 {
			continue
		}
		winX := uint16(x - startCol)
		tileX := winX / 8 & 0x1F
		tileIdx := p.vram(mapBase + tileY*32 + tileX)
		addr := p.tileDataAddr(tileIdx) + rowInTile*2
		lo, hi := p.vram(addr), p.vram(addr+1)

		idx := tilePixelIndex(lo, hi, uint8(winX%8))
		p.bgRaw[x] = idx
		p.FrameBuffer[int(ly)*ScreenWidth+x] = p.colorFor(p.bgp, idx)
	}
}

type spriteCandidate struct {
	idx, y, x, tile, attrs uint8
}

func (p *PPU) renderSprites(ly uint8) {
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}

	var candidates []spriteCandidate
	for i := 0; i < 40 && len(candidates) < 10; i++ {
		base := i * 4
		if base+4 > len(p.OAM) {
			break
		}
		y := p.OAM[base]
		spriteTop := int(y) - 16
		if int(ly) < spriteTop || int(ly) >= spriteTop+height {
			continue
		}
		candidates = append(candidates, spriteCandidate{
			idx: uint8(i), y: y, x: p.OAM[base+1], tile: p.OAM[base+2], attrs: p.OAM[base+3],
		})
	}

	// Stable sort by x ascending, OAM index as tiebreaker (already index
	// order from the scan above, so a simple stable insertion sort on x
	// preserves it).
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].x < candidates[j-1].x; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	// Draw lowest priority (last in sorted order) first, so the highest
	// priority (lowest x, lowest index) draws last and wins overlaps.
	for i := len(candidates) - 1; i >= 0; i-- {
		p.drawSprite(ly, candidates[i], height)
	}
}

func (p *PPU) drawSprite(ly uint8, s spriteCandidate, height int) {
	spriteTop := int(s.y) - 16
	row := int(ly) - spriteTop
	if s.attrs&0x40 != 0 { // Y flip
		row = height - 1 - row
	}

	tile := s.tile
	if height == 16 {
		tile &^= 1
	}
	addr := 0x8000 + uint16(tile)*16 + uint16(row)*2
	lo, hi := p.vram(addr), p.vram(addr+1)

	palette := p.obp0
	if s.attrs&0x10 != 0 {
		palette = p.obp1
	}
	bgPriority := s.attrs&0x80 != 0

	for sx := 0; sx < 8; sx++ {
		px := sx
		if s.attrs&0x20 != 0 { // X flip
			px = 7 - sx
		}
		idx := tilePixelIndex(lo, hi, uint8(px))
		if idx == 0 {
			continue
		}
		screenX := int(s.x) - 8 + sx
		if screenX < 0 || screenX >= ScreenWidth {
			continue
		}
		if bgPriority && p.bgRaw[screenX] != 0 {
			continue
		}
		p.FrameBuffer[int(ly)*ScreenWidth+screenX] = p.colorFor(palette, idx)
	}
}

func (p *PPU) colorFor(paletteReg uint8, idx uint8) uint32 {
	sel := (paletteReg >> (idx * 2)) & 0x03
	return Palette[sel]
}

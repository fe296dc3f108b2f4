package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/qjlxg/fe/internal/core"
	"go.uber.org/zap"
)

// PlaceholderSector labels instruments missing from the metadata list.
// Unmapped codes still participate in dedup grouping under this label.
const PlaceholderSector = "行业/主题"

// SectorMap maps instrument codes to display name and sector label.
type SectorMap map[string]core.SectorInfo

// Lookup never fails: unmapped codes get a placeholder identity.
func (m SectorMap) Lookup(code string) core.SectorInfo {
	if info, ok := m[code]; ok {
		return info
	}
	return core.SectorInfo{
		Name:   fmt.Sprintf("未匹配(%s)", code),
		Sector: PlaceholderSector,
	}
}

var (
	sectorCodeAliases = []string{"证券代码", "code"}
	sectorNameAliases = []string{"证券简称", "name"}
	sectorColKeywords = []string{"指数", "行业", "板块", "sector", "index"}
)

// LoadSectors reads the instrument list CSV. A missing or unreadable
// file yields an empty map with a warning; metadata is never fatal.
func LoadSectors(path string, logger *zap.Logger) SectorMap {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := SectorMap{}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("sector metadata unavailable, using placeholders",
			zap.String("path", path),
			zap.Error(err),
		)
		return m
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil || len(rows) < 2 {
		logger.Warn("sector metadata unreadable, using placeholders",
			zap.String("path", path),
			zap.Error(err),
		)
		return m
	}

	codeCol, nameCol, sectorCol := -1, -1, -1
	for i, h := range rows[0] {
		h = normalizeHeader(h)
		for _, alias := range sectorCodeAliases {
			if h == alias {
				codeCol = i
			}
		}
		for _, alias := range sectorNameAliases {
			if h == alias {
				nameCol = i
			}
		}
		if sectorCol < 0 {
			for _, kw := range sectorColKeywords {
				if strings.Contains(h, kw) {
					sectorCol = i
					break
				}
			}
		}
	}
	if codeCol < 0 || nameCol < 0 {
		logger.Warn("sector metadata missing code/name columns, using placeholders",
			zap.String("path", path),
		)
		return m
	}

	for _, row := range rows[1:] {
		if codeCol >= len(row) || nameCol >= len(row) {
			continue
		}
		code := CodeFromFilename(strings.TrimSpace(row[codeCol]))
		if code == "" {
			continue
		}
		info := core.SectorInfo{
			Name:   strings.TrimSpace(row[nameCol]),
			Sector: PlaceholderSector,
		}
		if sectorCol >= 0 && sectorCol < len(row) {
			if s := strings.TrimSpace(row[sectorCol]); s != "" {
				info.Sector = s
			}
		}
		m[code] = info
	}

	logger.Info("sector metadata loaded", zap.Int("entries", len(m)))
	return m
}

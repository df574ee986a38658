package domain

import "strings"

// BlockKind selects how a render-block entry resolves its content.
type BlockKind string

// Render block kinds.
const (
	// BlockSectionField resolves a named field on the object.
	BlockSectionField BlockKind = "section_field"
	// BlockGeoLocation resolves a field and routes it through the
	// geo-location resolver for a maps URL and QR code.
	BlockGeoLocation BlockKind = "geo_location"
	// BlockRenderSection resolves a key of the generic section registry.
	BlockRenderSection BlockKind = "render_section"
)

// BlockFormat selects the presentation of a resolved block value.
type BlockFormat string

// Render block formats.
const (
	FormatText     BlockFormat = "text"
	FormatMarkdown BlockFormat = "md"
	FormatKeyValue BlockFormat = "kv"
)

// RenderBlock is one entry of a variant's static render descriptor.
type RenderBlock struct {
	Kind   BlockKind
	Label  string
	Field  string
	Format BlockFormat
}

// ResolveBlock resolves a descriptor entry against its object. The second
// return is false when the resolved text is empty, meaning the block is
// skipped; malformed entries (unknown field or section key) resolve empty
// and are likewise dropped without aborting the render.
func ResolveBlock(obj ExamObject, block RenderBlock) (string, bool) {
	var value string
	switch block.Kind {
	case BlockSectionField, BlockGeoLocation:
		value = obj.Field(block.Field)
	case BlockRenderSection:
		value = obj.SectionValue(block.Field)
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

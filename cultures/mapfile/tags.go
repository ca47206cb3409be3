package mapfile

import "gitgub.com/cam-per/cultures/cultures/channel"

// Tag is the 8 byte name of a map section.
type Tag string

const (
	TagSize Tag = "hoixzisl"

	TagElevation Tag = "hoixehml"
	TagLighting  Tag = "hoixrbme"

	TagTilesIndex Tag = "hoixdpae"
	TagTilesA     Tag = "hoixapme"
	TagTilesB     Tag = "hoixbpme"

	TagTransitionsIndex Tag = "hoixdtae"
	TagTransA1          Tag = "hoix1tme"
	TagTransB1          Tag = "hoix2tme"
	TagTransA2          Tag = "hoix3tme"
	TagTransB2          Tag = "hoix4tme"

	TagLandscapeIndex    Tag = "hoixdlae"
	TagLandscapeJobTypes Tag = "hoixtlml"
	TagLandscapeTypes    Tag = "hoixalme"
	TagLandscapeLevels   Tag = "hoixvlml"
)

// codecs selects the channel strategy of every section the decoder keeps.
// Tags not listed here are skipped.
var codecs = map[Tag]channel.Codec{
	TagElevation:         channel.CodecBytes,
	TagLighting:          channel.CodecBytes,
	TagLandscapeJobTypes: channel.CodecBytes,
	TagLandscapeLevels:   channel.CodecBytes,
	TagLandscapeTypes:    channel.CodecRaw,

	TagTilesIndex:       channel.CodecDictionary,
	TagTilesA:           channel.CodecWords,
	TagTilesB:           channel.CodecWords,
	TagTransitionsIndex: channel.CodecDictionary,
	TagTransA1:          channel.CodecBytes,
	TagTransB1:          channel.CodecBytes,
	TagTransA2:          channel.CodecBytes,
	TagTransB2:          channel.CodecBytes,
	TagLandscapeIndex:   channel.CodecDictionary,

	// kept but not part of MapData
	"hoixapml": channel.CodecBytes,
	"hoixbpml": channel.CodecBytes,
	"hoixplml": channel.CodecBytes,
	"hoixocml": channel.CodecBytes,
	"hoixwtml": channel.CodecBytes,
	"hoixsmml": channel.CodecBytes,
	"hoixrpml": channel.CodecBytes,
	"hoixbwml": channel.CodecBytes,
	"hoixbbml": channel.CodecBytes,
	"hoixorml": channel.CodecBytes,
	"hoixbsml": channel.CodecBytes,
	"hoixoaml": channel.CodecWords,
	"hoix1mme": channel.CodecBytes,
	"hoiximme": channel.CodecBytes,
}

// Codec reports the channel strategy used for tag.
func Codec(tag Tag) (channel.Codec, bool) {
	c, ok := codecs[tag]
	return c, ok
}

package cif

// Text maps string ids to strings.
//
//	[text]
//	stringn 1 "Small nourishing potion"
//	string "Big nourishing potion"
//
// "string" takes the id after the previous line's id.
type Text struct {
	Strings map[uint32]string
}

func (*Text) Schema() string { return SchemaText }
func (*Text) record()        {}

func buildText(section Section) (Record, error) {
	text := &Text{Strings: make(map[uint32]string)}
	next := uint32(1)

	put := func(id uint32, s string) {
		if _, ok := text.Strings[id]; !ok {
			text.Strings[id] = s
		}
		next = id + 1
	}

	for _, item := range section.Items {
		switch lower(item.Key) {
		case "stringn":
			t := tokens(item.Value)
			if len(t) != 2 || !t[1].quoted {
				return nil, invalid(item.Key, item.Value, "want id and quoted string")
			}
			id, err := uintToken(item.Key, t[0], 32)
			if err != nil {
				return nil, err
			}
			put(uint32(id), t[1].text)
		case "string":
			s, err := parseString(item.Key, item.Value)
			if err != nil {
				return nil, err
			}
			put(next, s)
		}
	}
	return text, nil
}

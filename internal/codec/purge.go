package codec

func purgeHandlerTree() *Handler[PurgeMessage] {
	return ObjectOf(map[string]*Handler[PurgeMessage]{
		"path": StringField(func(v string, m *PurgeMessage) error {
			m.Path = v
			return nil
		}),
	})
}

var purgeTree = purgeHandlerTree()

// DecodePurge parses and validates a PurgeMessage.
func DecodePurge(data []byte) (*PurgeMessage, error) {
	m, err := Decode(data, purgeTree)
	if err != nil {
		return nil, err
	}
	if m.Path == "" {
		return nil, semanticErr("$.path", "path must not be empty")
	}
	return m, nil
}

// EncodePurge renders m as the §6.1 PurgeMessage shape.
func EncodePurge(m *PurgeMessage) []byte {
	buf := make([]byte, 0, 16+len(m.Path))
	buf = append(buf, `{"path":`...)
	buf = append(buf, quoteJSON(m.Path)...)
	buf = append(buf, '}')
	return buf
}

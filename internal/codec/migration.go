package codec

func migrationHandlerTree() *Handler[MigrationMessage] {
	return ObjectOf(map[string]*Handler[MigrationMessage]{
		"path": StringField(func(v string, m *MigrationMessage) error {
			m.Path = v
			return nil
		}),
	})
}

var migrationTree = migrationHandlerTree()

// DecodeMigration parses and validates a MigrationMessage.
func DecodeMigration(data []byte) (*MigrationMessage, error) {
	m, err := Decode(data, migrationTree)
	if err != nil {
		return nil, err
	}
	if m.Path == "" {
		return nil, semanticErr("$.path", "path must not be empty")
	}
	return m, nil
}

// EncodeMigration renders m as the §6.1 MigrationMessage shape.
func EncodeMigration(m *MigrationMessage) []byte {
	buf := make([]byte, 0, 16+len(m.Path))
	buf = append(buf, `{"path":`...)
	buf = append(buf, quoteJSON(m.Path)...)
	buf = append(buf, '}')
	return buf
}

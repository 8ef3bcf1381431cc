package codec

import "fmt"

func scanHandlerTree() *Handler[ScanMessage] {
	format := ObjectOf(map[string]*Handler[ScanMessage]{
		"filesys": StringField(func(v string, m *ScanMessage) error {
			m.Filesys = v
			return nil
		}),
		"ost_pool": StringField(func(v string, m *ScanMessage) error {
			m.OSTPool = v
			return nil
		}),
		"stripe_count": IntField(func(v uint64, m *ScanMessage) error {
			m.StripeCount = v
			return nil
		}),
		"fid": StringField(func(v string, m *ScanMessage) error {
			m.FID = v
			return nil
		}),
	})

	return ObjectOf(map[string]*Handler[ScanMessage]{
		"type": StringField(func(v string, m *ScanMessage) error {
			if v != "f" && v != "d" {
				return fmt.Errorf("invalid file type: %q", v)
			}
			m.Type = v
			return nil
		}),
		"path": StringField(func(v string, m *ScanMessage) error {
			m.Path = v
			return nil
		}),
		"atime": IntField(func(v uint64, m *ScanMessage) error {
			m.Atime = v
			return nil
		}),
		"mtime": IntField(func(v uint64, m *ScanMessage) error {
			m.Mtime = v
			return nil
		}),
		"size": IntField(func(v uint64, m *ScanMessage) error {
			m.Size = v
			return nil
		}),
		"uid": IntField(func(v uint64, m *ScanMessage) error {
			m.UID = v
			return nil
		}),
		"gid": IntField(func(v uint64, m *ScanMessage) error {
			m.GID = v
			return nil
		}),
		"format": format,
	})
}

var scanTree = scanHandlerTree()

func validateScan(m *ScanMessage) error {
	switch {
	case m.Type != "f" && m.Type != "d":
		return fmt.Errorf("type must be 'f' or 'd', got %q", m.Type)
	case m.Path == "":
		return fmt.Errorf("path must not be empty")
	case m.Atime == 0:
		return fmt.Errorf("atime must not be the epoch")
	case m.Mtime == 0:
		return fmt.Errorf("mtime must not be the epoch")
	case m.Filesys == "":
		return fmt.Errorf("filesys must not be empty")
	case m.FID == "":
		return fmt.Errorf("fid must not be empty")
	default:
		return nil
	}
}

// DecodeScan parses and validates a ScanMessage.
func DecodeScan(data []byte) (*ScanMessage, error) {
	m, err := Decode(data, scanTree)
	if err != nil {
		return nil, err
	}
	if verr := validateScan(m); verr != nil {
		return nil, semanticErr("$", verr.Error())
	}
	return m, nil
}

func writeScan(m *ScanMessage) []byte {
	buf := make([]byte, 0, 192+len(m.Path)+len(m.Filesys)+len(m.OSTPool)+len(m.FID))
	buf = append(buf, '{')
	buf = append(buf, `"type":`...)
	buf = append(buf, quoteJSON(m.Type)...)
	buf = append(buf, `,"path":`...)
	buf = append(buf, quoteJSON(m.Path)...)
	buf = append(buf, `,"atime":`...)
	buf = appendUint(buf, m.Atime)
	buf = append(buf, `,"mtime":`...)
	buf = appendUint(buf, m.Mtime)
	buf = append(buf, `,"size":`...)
	buf = appendUint(buf, m.Size)
	buf = append(buf, `,"uid":`...)
	buf = appendUint(buf, m.UID)
	buf = append(buf, `,"gid":`...)
	buf = appendUint(buf, m.GID)
	buf = append(buf, `,"format":{"filesys":`...)
	buf = append(buf, quoteJSON(m.Filesys)...)
	buf = append(buf, `,"ost_pool":`...)
	buf = append(buf, quoteJSON(m.OSTPool)...)
	buf = append(buf, `,"stripe_count":`...)
	buf = appendUint(buf, m.StripeCount)
	buf = append(buf, `,"fid":`...)
	buf = append(buf, quoteJSON(m.FID)...)
	buf = append(buf, '}', '}')
	return buf
}

// EncodeScan renders m as the §6.1 ScanMessage shape.
func EncodeScan(m *ScanMessage) []byte {
	return writeScan(m)
}

// EncodeScanInto renders m into dst and returns the filled slice, for hot
// paths that want to avoid an allocation per message. It fails only when
// dst is too small for the rendered length.
func EncodeScanInto(m *ScanMessage, dst []byte) ([]byte, error) {
	rendered := writeScan(m)
	if len(rendered) > len(dst) {
		return nil, &EncodeError{Need: len(rendered), Have: len(dst)}
	}
	n := copy(dst, rendered)
	return dst[:n], nil
}

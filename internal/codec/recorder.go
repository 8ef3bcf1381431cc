package codec

import "fmt"

func recorderHandlerTree() *Handler[RecorderMessage] {
	format := ObjectOf(map[string]*Handler[RecorderMessage]{
		"filesys": StringField(func(v string, m *RecorderMessage) error {
			m.Filesys = v
			return nil
		}),
		"ost_pool": StringField(func(v string, m *RecorderMessage) error {
			m.OSTPool = v
			return nil
		}),
		"stripe_count": IntField(func(v uint64, m *RecorderMessage) error {
			m.StripeCount = v
			return nil
		}),
		"fid": StringField(func(v string, m *RecorderMessage) error {
			m.FID = v
			return nil
		}),
	})

	return ObjectOf(map[string]*Handler[RecorderMessage]{
		"type": StringField(func(v string, m *RecorderMessage) error {
			if v != "f" && v != "d" {
				return fmt.Errorf("invalid file type: %q", v)
			}
			m.Type = v
			return nil
		}),
		"path": StringField(func(v string, m *RecorderMessage) error {
			m.Path = v
			return nil
		}),
		"atime": IntField(func(v uint64, m *RecorderMessage) error {
			m.Atime = v
			return nil
		}),
		"mtime": IntField(func(v uint64, m *RecorderMessage) error {
			m.Mtime = v
			return nil
		}),
		"size": IntField(func(v uint64, m *RecorderMessage) error {
			m.Size = v
			return nil
		}),
		"uid": IntField(func(v uint64, m *RecorderMessage) error {
			m.UID = v
			return nil
		}),
		"gid": IntField(func(v uint64, m *RecorderMessage) error {
			m.GID = v
			return nil
		}),
		"format": format,
	})
}

var recorderTree = recorderHandlerTree()

func validateRecorder(m *RecorderMessage) error {
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

// DecodeRecorder parses and validates a RecorderMessage.
func DecodeRecorder(data []byte) (*RecorderMessage, error) {
	m, err := Decode(data, recorderTree)
	if err != nil {
		return nil, err
	}
	if verr := validateRecorder(m); verr != nil {
		return nil, semanticErr("$", verr.Error())
	}
	return m, nil
}

func writeRecorder(m *RecorderMessage) []byte {
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

// EncodeRecorder renders m as the §6.1 RecorderMessage shape.
func EncodeRecorder(m *RecorderMessage) []byte {
	return writeRecorder(m)
}

// ScanToRecorder copies a decoded ScanMessage into a RecorderMessage. The
// two are structurally identical; this keeps the policy agent from
// reaching into the wire layout directly when (eventually) forwarding to
// the recorder stream (see the policy agent's reserved recorder handle).
func ScanToRecorder(s *ScanMessage) *RecorderMessage {
	return &RecorderMessage{
		Type: s.Type, Path: s.Path, Atime: s.Atime, Mtime: s.Mtime,
		Size: s.Size, UID: s.UID, GID: s.GID, Filesys: s.Filesys,
		OSTPool: s.OSTPool, StripeCount: s.StripeCount, FID: s.FID,
	}
}

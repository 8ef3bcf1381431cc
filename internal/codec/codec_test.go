package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olcf/polimor/internal/codec"
)

func TestDecodeScan_RoundTrip(t *testing.T) {
	in := &codec.ScanMessage{
		Type: "f", Path: "/a", Atime: 1, Mtime: 2, Size: 3, UID: 4, GID: 5,
		Filesys: "x", OSTPool: "", StripeCount: 0, FID: "z",
	}

	encoded := codec.EncodeScan(in)
	assert.Equal(t,
		`{"type":"f","path":"/a","atime":1,"mtime":2,"size":3,"uid":4,"gid":5,"format":{"filesys":"x","ost_pool":"","stripe_count":0,"fid":"z"}}`,
		string(encoded))

	out, err := codec.DecodeScan(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeScan_RejectsBadType(t *testing.T) {
	raw := []byte(`{"type":"x","path":"/a","atime":1,"mtime":2,"size":0,"uid":0,"gid":0,"format":{"filesys":"x","ost_pool":"","stripe_count":0,"fid":"z"}}`)
	_, err := codec.DecodeScan(raw)
	require.Error(t, err)
}

func TestDecodeScan_RejectsEmptyPath(t *testing.T) {
	raw := []byte(`{"type":"f","path":"","atime":1,"mtime":2,"size":0,"uid":0,"gid":0,"format":{"filesys":"x","ost_pool":"","stripe_count":0,"fid":"z"}}`)
	_, err := codec.DecodeScan(raw)
	require.Error(t, err)
	var derr *codec.DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, codec.ErrKindSemantic, derr.Kind)
}

func TestDecodeScan_RejectsEmptyFilesys(t *testing.T) {
	raw := []byte(`{"type":"f","path":"/a","atime":1,"mtime":2,"size":0,"uid":0,"gid":0,"format":{"filesys":"","ost_pool":"","stripe_count":0,"fid":"z"}}`)
	_, err := codec.DecodeScan(raw)
	require.Error(t, err)
}

func TestDecodeScan_RejectsEmptyFID(t *testing.T) {
	raw := []byte(`{"type":"f","path":"/a","atime":1,"mtime":2,"size":0,"uid":0,"gid":0,"format":{"filesys":"x","ost_pool":"","stripe_count":0,"fid":""}}`)
	_, err := codec.DecodeScan(raw)
	require.Error(t, err)
}

func TestDecodeScan_UnknownKeyIsShapeError(t *testing.T) {
	raw := []byte(`{"type":"f","path":"/a","atime":1,"mtime":2,"size":0,"uid":0,"gid":0,"bogus":1,"format":{"filesys":"x","ost_pool":"","stripe_count":0,"fid":"z"}}`)
	_, err := codec.DecodeScan(raw)
	require.Error(t, err)
	var derr *codec.DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, codec.ErrKindShape, derr.Kind)
}

func TestDecodeScan_MalformedJSONIsParseError(t *testing.T) {
	_, err := codec.DecodeScan([]byte(`{"type":`))
	require.Error(t, err)
	var derr *codec.DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, codec.ErrKindParse, derr.Kind)
}

func TestDecodeRecorder_SameShapeAsScan(t *testing.T) {
	raw := codec.EncodeRecorder(&codec.RecorderMessage{
		Type: "d", Path: "/b", Atime: 10, Mtime: 20, Size: 0, UID: 0, GID: 0,
		Filesys: "fs", OSTPool: "capacity", StripeCount: 4, FID: "fid-1",
	})
	out, err := codec.DecodeRecorder(raw)
	require.NoError(t, err)
	assert.Equal(t, "fid-1", out.FID)
}

func TestDecodePurge_RoundTrip(t *testing.T) {
	in := &codec.PurgeMessage{Path: "/tmp/old"}
	out, err := codec.DecodePurge(codec.EncodePurge(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodePurge_RejectsEmptyPath(t *testing.T) {
	_, err := codec.DecodePurge([]byte(`{"path":""}`))
	require.Error(t, err)
}

func TestDecodeMigration_RoundTrip(t *testing.T) {
	in := &codec.MigrationMessage{Path: "/tmp/hot"}
	out, err := codec.DecodeMigration(codec.EncodeMigration(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeMigration_RejectsEmptyPath(t *testing.T) {
	_, err := codec.DecodeMigration([]byte(`{"path":""}`))
	require.Error(t, err)
}

func TestScanToRecorder(t *testing.T) {
	s := &codec.ScanMessage{Type: "f", Path: "/a", Atime: 1, Mtime: 2, Filesys: "x", FID: "z"}
	r := codec.ScanToRecorder(s)
	assert.Equal(t, s.Path, r.Path)
	assert.Equal(t, s.FID, r.FID)
}

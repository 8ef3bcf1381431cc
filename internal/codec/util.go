package codec

import "strconv"

func appendUint(buf []byte, v uint64) []byte {
	return strconv.AppendUint(buf, v, 10)
}

package badger

import "encoding/binary"

var (
	prefixProtocol  = []byte("p/")
	prefixBlock     = []byte("b/")
	prefixAccount   = []byte("a/")
	prefixAddress   = []byte("ai/")
	prefixOperation = []byte("o/")
	prefixCycle     = []byte("c/")
	keyState        = []byte("s")
)

func makeKey(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p)
	}
	key := make([]byte, 0, size)
	key = append(key, prefix...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

func be64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func be32(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func protocolKey(code string) []byte { return makeKey(prefixProtocol, []byte(code)) }
func blockKey(level int64) []byte    { return makeKey(prefixBlock, be64(level)) }
func accountKey(id int64) []byte     { return makeKey(prefixAccount, be64(id)) }
func addressKey(addr string) []byte  { return makeKey(prefixAddress, []byte(addr)) }
func cycleKey(index int) []byte      { return makeKey(prefixCycle, be32(int32(index))) }

func operationKey(level int64, index int32) []byte {
	return makeKey(prefixOperation, be64(level), be32(index))
}

func operationLevelPrefix(level int64) []byte {
	return makeKey(prefixOperation, be64(level))
}

package service

import (
	"encoding/binary"
	"fmt"

	"forum_go/internal/model"
)

// marshalTopicDTO 序列化TopicDTO
//
// L2 缓存走手写二进制：定长数值 + 长度前缀字符串，比 JSON 省一半
// 以上空间，且解码无反射。
func marshalTopicDTO(dto *model.TopicDTO) ([]byte, error) {
	buf := make([]byte, 0, 64+len(dto.Title)+len(dto.Content)+len(dto.AuthorName))

	buf = appendInt64(buf, dto.TopicID)
	buf = appendInt64(buf, dto.CategoryID)
	buf = appendInt64(buf, dto.AuthorID)
	buf = appendString16(buf, dto.AuthorName)
	buf = appendString16(buf, dto.Title)
	buf = appendString32(buf, dto.Content)
	buf = appendString16(buf, dto.Status)

	var flags byte
	if dto.IsPinned {
		flags |= 1
	}
	if dto.IsLocked {
		flags |= 2
	}
	buf = append(buf, flags)

	buf = appendInt32(buf, int32(dto.ViewCount))
	buf = appendInt32(buf, int32(dto.ReplyCount))
	buf = appendInt64(buf, dto.LastActivityAt)
	buf = appendInt64(buf, dto.CreatedAt)
	buf = appendInt64(buf, dto.LastEditedAt)

	return buf, nil
}

// unmarshalTopicDTO 反序列化TopicDTO
func unmarshalTopicDTO(data []byte, dto *model.TopicDTO) error {
	r := &binaryReader{data: data}

	dto.TopicID = r.int64()
	dto.CategoryID = r.int64()
	dto.AuthorID = r.int64()
	dto.AuthorName = r.string16()
	dto.Title = r.string16()
	dto.Content = r.string32()
	dto.Status = r.string16()

	flags := r.byte()
	dto.IsPinned = flags&1 != 0
	dto.IsLocked = flags&2 != 0

	dto.ViewCount = int(r.int32())
	dto.ReplyCount = int(r.int32())
	dto.LastActivityAt = r.int64()
	dto.CreatedAt = r.int64()
	dto.LastEditedAt = r.int64()

	return r.err
}

func appendInt64(buf []byte, v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return append(buf, b[:]...)
}

func appendInt32(buf []byte, v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return append(buf, b[:]...)
}

func appendString16(buf []byte, s string) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(len(s)))
	buf = append(buf, b[:]...)
	return append(buf, s...)
}

func appendString32(buf []byte, s string) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(len(s)))
	buf = append(buf, b[:]...)
	return append(buf, s...)
}

// binaryReader 顺序解码器，首个越界后置 err 并返回零值
type binaryReader struct {
	data []byte
	off  int
	err  error
}

func (r *binaryReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = fmt.Errorf("truncated payload at offset %d", r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *binaryReader) byte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *binaryReader) int32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

func (r *binaryReader) int64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

func (r *binaryReader) string16() string {
	b := r.take(2)
	if b == nil {
		return ""
	}
	return string(r.take(int(binary.BigEndian.Uint16(b))))
}

func (r *binaryReader) string32() string {
	b := r.take(4)
	if b == nil {
		return ""
	}
	return string(r.take(int(binary.BigEndian.Uint32(b))))
}

// Package codec implements the registry's wire compatibility surface: the
// deterministic record keys and the fixed-capacity little-endian record
// layouts. Existing deployments address and decode records by exactly these
// bytes, so changes here are breaking.
package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/genesisbarrios/senfiltro/internal/registry/models"
	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	"github.com/genesisbarrios/senfiltro/pkg/platform/sentinel"
)

// Domain tags used for key derivation.
const (
	tagPostCounter    = "post_counter"
	tagCommentCounter = "comment_counter"
	tagPost           = "post"
	tagComment        = "comment"
	tagReaction       = "reaction"
)

// tagSize is the record-type discriminator prefixed to every payload: the
// first 8 bytes of sha256("record:<TypeName>").
const tagSize = 8

var (
	postCounterTag    = typeTag("PostCounter")
	commentCounterTag = typeTag("CommentCounter")
	postTag           = typeTag("Post")
	commentTag        = typeTag("Comment")
	reactionTag       = typeTag("Reaction")
)

func typeTag(name string) [tagSize]byte {
	sum := sha256.Sum256([]byte("record:" + name))
	var tag [tagSize]byte
	copy(tag[:], sum[:tagSize])
	return tag
}

// PostCounterKey returns the storage key of the post counter singleton.
func PostCounterKey() []byte { return []byte(tagPostCounter) }

// CommentCounterKey returns the storage key of the comment counter singleton.
func CommentCounterKey() []byte { return []byte(tagCommentCounter) }

// PostKey derives the storage key for a post id.
func PostKey(postID uint64) []byte {
	return appendUint64([]byte(tagPost), postID)
}

// CommentKey derives the storage key for a comment id.
func CommentKey(commentID uint64) []byte {
	return appendUint64([]byte(tagComment), commentID)
}

// ReactionKey derives the storage key for the (post, user) reaction record.
// Embedding the caller identity in the key is what scopes reactions: a caller
// can only ever address their own record.
func ReactionKey(postID uint64, user id.Identity) []byte {
	key := appendUint64([]byte(tagReaction), postID)
	return append(key, user.Bytes()...)
}

func appendUint64(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

// Reserved capacities. Each record's capacity is fixed at creation as a
// function of its variable-length fields; the backing record is never resized.

// CounterSpace reserves room for a counter record.
func CounterSpace() int { return tagSize + 16 }

// PostSpace reserves room for a post with a metadata CID of cidLen bytes.
func PostSpace(cidLen int) int {
	return tagSize + 8 + 32 + 4 + cidLen + 1 + 8 + 8 + 8 + 1
}

// CommentSpace reserves room for a comment with a metadata CID of cidLen bytes.
// The optional parent reference always reserves its 1+8 bytes so clearing it
// never changes the encoded size.
func CommentSpace(cidLen int) int {
	return tagSize + 8 + 32 + 4 + cidLen + 1 + 8 + 8 + 1
}

// ReactionSpace reserves room for a reaction record.
func ReactionSpace() int { return tagSize + 8 + 32 + 1 + 1 }

// EncodeCounter serializes a counter record. Counters share one layout; the
// key already disambiguates post vs comment, but the payload still carries a
// per-kind type tag for discrimination.
func EncodeCounter(c models.Counter) []byte {
	buf := make([]byte, 0, tagSize+8)
	if c.Kind == models.CounterComments {
		buf = append(buf, commentCounterTag[:]...)
	} else {
		buf = append(buf, postCounterTag[:]...)
	}
	buf = appendUint64(buf, c.Count)
	return buf
}

// DecodeCounter deserializes a counter record.
func DecodeCounter(b []byte) (models.Counter, error) {
	var c models.Counter
	r := reader{buf: b}
	tag, err := r.bytes(tagSize)
	if err != nil {
		return c, err
	}
	switch {
	case bytesEqual(tag, postCounterTag[:]):
		c.Kind = models.CounterPosts
	case bytesEqual(tag, commentCounterTag[:]):
		c.Kind = models.CounterComments
	default:
		return c, fmt.Errorf("counter record: %w: unexpected type tag", sentinel.ErrInvalidState)
	}
	if c.Count, err = r.uint64(); err != nil {
		return c, err
	}
	return c, nil
}

// EncodePost serializes a post record.
func EncodePost(p *models.Post) []byte {
	buf := make([]byte, 0, PostSpace(len(p.MetadataCID)))
	buf = append(buf, postTag[:]...)
	buf = appendUint64(buf, p.ID)
	buf = append(buf, p.Author.Bytes()...)
	buf = appendString(buf, p.MetadataCID)
	buf = appendBool(buf, p.AIGenerated)
	buf = appendUint64(buf, p.Likes)
	buf = appendUint64(buf, p.Dislikes)
	buf = appendUint64(buf, uint64(p.CreatedAt))
	buf = appendBool(buf, p.Deleted)
	return buf
}

// DecodePost deserializes a post record.
func DecodePost(b []byte) (*models.Post, error) {
	r := reader{buf: b}
	if err := r.expectTag(postTag, "post"); err != nil {
		return nil, err
	}
	var p models.Post
	var err error
	if p.ID, err = r.uint64(); err != nil {
		return nil, err
	}
	if p.Author, err = r.identity(); err != nil {
		return nil, err
	}
	if p.MetadataCID, err = r.string(); err != nil {
		return nil, err
	}
	if p.AIGenerated, err = r.bool(); err != nil {
		return nil, err
	}
	if p.Likes, err = r.uint64(); err != nil {
		return nil, err
	}
	if p.Dislikes, err = r.uint64(); err != nil {
		return nil, err
	}
	createdAt, err := r.uint64()
	if err != nil {
		return nil, err
	}
	p.CreatedAt = int64(createdAt)
	if p.Deleted, err = r.bool(); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodeComment serializes a comment record.
func EncodeComment(c *models.Comment) []byte {
	buf := make([]byte, 0, CommentSpace(len(c.MetadataCID)))
	buf = append(buf, commentTag[:]...)
	buf = appendUint64(buf, c.ID)
	buf = append(buf, c.Author.Bytes()...)
	buf = appendString(buf, c.MetadataCID)
	if c.ParentPost != nil {
		buf = appendBool(buf, true)
		buf = appendUint64(buf, *c.ParentPost)
	} else {
		buf = appendBool(buf, false)
		buf = appendUint64(buf, 0)
	}
	buf = appendUint64(buf, uint64(c.CreatedAt))
	buf = appendBool(buf, c.Deleted)
	return buf
}

// DecodeComment deserializes a comment record.
func DecodeComment(b []byte) (*models.Comment, error) {
	r := reader{buf: b}
	if err := r.expectTag(commentTag, "comment"); err != nil {
		return nil, err
	}
	var c models.Comment
	var err error
	if c.ID, err = r.uint64(); err != nil {
		return nil, err
	}
	if c.Author, err = r.identity(); err != nil {
		return nil, err
	}
	if c.MetadataCID, err = r.string(); err != nil {
		return nil, err
	}
	hasParent, err := r.bool()
	if err != nil {
		return nil, err
	}
	parent, err := r.uint64()
	if err != nil {
		return nil, err
	}
	if hasParent {
		c.ParentPost = &parent
	}
	createdAt, err := r.uint64()
	if err != nil {
		return nil, err
	}
	c.CreatedAt = int64(createdAt)
	if c.Deleted, err = r.bool(); err != nil {
		return nil, err
	}
	return &c, nil
}

// EncodeReaction serializes a reaction record.
func EncodeReaction(re *models.Reaction) []byte {
	buf := make([]byte, 0, ReactionSpace())
	buf = append(buf, reactionTag[:]...)
	buf = appendUint64(buf, re.PostID)
	buf = append(buf, re.User.Bytes()...)
	buf = append(buf, byte(re.Value))
	buf = appendBool(buf, re.Initialized)
	return buf
}

// DecodeReaction deserializes a reaction record.
func DecodeReaction(b []byte) (*models.Reaction, error) {
	r := reader{buf: b}
	if err := r.expectTag(reactionTag, "reaction"); err != nil {
		return nil, err
	}
	var re models.Reaction
	var err error
	if re.PostID, err = r.uint64(); err != nil {
		return nil, err
	}
	if re.User, err = r.identity(); err != nil {
		return nil, err
	}
	value, err := r.byte()
	if err != nil {
		return nil, err
	}
	re.Value = int8(value)
	if re.Initialized, err = r.bool(); err != nil {
		return nil, err
	}
	return &re, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// reader walks a record payload with bounds checking. Truncated or oversized
// payloads surface as ErrInvalidState so stores and services treat them as
// corruption, never as caller error.
type reader struct {
	buf []byte
	off int
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, fmt.Errorf("record truncated at offset %d: %w", r.off, sentinel.ErrInvalidState)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) expectTag(tag [tagSize]byte, name string) error {
	got, err := r.bytes(tagSize)
	if err != nil {
		return err
	}
	if !bytesEqual(got, tag[:]) {
		return fmt.Errorf("%s record: %w: unexpected type tag", name, sentinel.ErrInvalidState)
	}
	return nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) bool() (bool, error) {
	b, err := r.byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (r *reader) string() (string, error) {
	lb, err := r.bytes(4)
	if err != nil {
		return "", err
	}
	n := int(binary.LittleEndian.Uint32(lb))
	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) identity() (id.Identity, error) {
	var actor id.Identity
	b, err := r.bytes(id.IdentitySize)
	if err != nil {
		return actor, err
	}
	copy(actor[:], b)
	return actor, nil
}

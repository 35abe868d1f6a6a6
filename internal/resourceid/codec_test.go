package resourceid

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var externalFormat = regexp.MustCompile(`^[a-z][a-z0-9]*_[1-9A-HJ-NP-Za-km-z]+$`)

func newTestCodec(t testing.TB, secret string) *Codec {
	t.Helper()
	c, err := New([]byte(secret))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func genPrefix() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z][a-z0-9]{0,11}`)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrMissingSecret)
	_, err = New([]byte{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestNewCopiesSecret(t *testing.T) {
	secret := []byte("s3cr3t")
	c, err := New(secret)
	require.NoError(t, err)
	raw := make([]byte, BlockSize)
	before, err := c.Encode("user", raw)
	require.NoError(t, err)
	secret[0] = 'x'
	after, err := c.Encode("user", raw)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWorkedExample(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	zero := make([]byte, BlockSize)

	id, err := c.Encode("user", zero)
	require.NoError(t, err)
	assert.Regexp(t, externalFormat, id)
	assert.True(t, strings.HasPrefix(id, "user_"))

	again, err := newTestCodec(t, "s3cr3t").Encode("user", zero)
	require.NoError(t, err)
	assert.Equal(t, id, again, "encoding must be reproducible across codecs")

	// the body is exactly Base58(AES-256(SHA-256 key, zero block))
	ct, err := EncryptBlock(DeriveKey("user", []byte("s3cr3t")), zero)
	require.NoError(t, err)
	assert.Equal(t, "user_"+base58.Encode(ct), id)

	raw, err := c.Decode("user", id)
	require.NoError(t, err)
	assert.Equal(t, zero, raw)
}

func TestRoundTripProperty(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	rapid.Check(t, func(t *rapid.T) {
		prefix := genPrefix().Draw(t, "prefix")
		raw := rapid.SliceOfN(rapid.Byte(), BlockSize, BlockSize).Draw(t, "raw")

		id, err := c.Encode(prefix, raw)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if !externalFormat.MatchString(id) {
			t.Fatalf("id %q does not match external format", id)
		}
		got, err := c.Decode(prefix, id)
		if err != nil {
			t.Fatalf("decode %q: %v", id, err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("round trip %x, want %x", got, raw)
		}
	})
}

func TestDeterminismProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		secret := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "secret")
		prefix := genPrefix().Draw(t, "prefix")
		raw := rapid.SliceOfN(rapid.Byte(), BlockSize, BlockSize).Draw(t, "raw")

		a, err := New(secret)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		b, _ := New(secret)
		first, _ := a.Encode(prefix, raw)
		second, _ := a.Encode(prefix, raw)
		third, _ := b.Encode(prefix, raw)
		if first != second || first != third {
			t.Fatalf("non-deterministic encoding: %q %q %q", first, second, third)
		}
	})
}

func TestPrefixIsolationProperty(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	rapid.Check(t, func(t *rapid.T) {
		p := genPrefix().Draw(t, "p")
		q := genPrefix().Filter(func(q string) bool { return q != p }).Draw(t, "q")
		raw := rapid.SliceOfN(rapid.Byte(), BlockSize, BlockSize).Draw(t, "raw")

		id, err := c.Encode(p, raw)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if _, err := c.Decode(q, id); !errors.Is(err, ErrPrefixMismatch) {
			t.Fatalf("decode under %q: expected ErrPrefixMismatch, got %v", q, err)
		}
		other, _ := c.Encode(q, raw)
		if other[len(q)+1:] == id[len(p)+1:] {
			t.Fatalf("bodies for %q and %q collide", p, q)
		}
	})
}

func TestEncodeInvalidLength(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	for _, n := range []int{0, 15, 17, 32} {
		_, err := c.Encode("user", make([]byte, n))
		assert.ErrorIs(t, err, ErrInvalidInputLength, "len %d", n)
	}
}

func TestEncodeInvalidPrefix(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	for _, p := range []string{"", "User", "1user", "us_er", "us:er", "us er"} {
		_, err := c.Encode(p, make([]byte, BlockSize))
		assert.ErrorIs(t, err, ErrInvalidPrefix, "prefix %q", p)
	}
}

func TestDecodeErrors(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	valid, err := c.Encode("user", bytes.Repeat([]byte{7}, BlockSize))
	require.NoError(t, err)
	body := valid[len("user_"):]

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "missing prefix", input: body, want: ErrPrefixMismatch},
		{name: "other prefix", input: "wait_" + body, want: ErrPrefixMismatch},
		{name: "longer prefix", input: "users_" + body, want: ErrPrefixMismatch},
		{name: "no separator", input: "user" + body, want: ErrPrefixMismatch},
		{name: "uppercase prefix", input: "USER_" + body, want: ErrPrefixMismatch},
		{name: "zero in body", input: "user_" + body[:3] + "0" + body[4:], want: ErrMalformedEncoding},
		{name: "capital O in body", input: "user_O" + body[1:], want: ErrMalformedEncoding},
		{name: "capital I in body", input: "user_I" + body[1:], want: ErrMalformedEncoding},
		{name: "lowercase l in body", input: "user_l" + body[1:], want: ErrMalformedEncoding},
		{name: "empty body", input: "user_", want: ErrMalformedEncoding},
		{name: "short payload", input: "user_" + base58.Encode(make([]byte, 15)), want: ErrInvalidInputLength},
		{name: "long payload", input: "user_" + base58.Encode(bytes.Repeat([]byte{1}, 17)), want: ErrInvalidInputLength},
		{name: "double payload", input: "user_" + body + body, want: ErrInvalidInputLength},
		{name: "one char over max", input: "user_" + strings.Repeat("z", MaxEncodedLen+1), want: ErrInvalidInputLength},
		{name: "oversized body", input: "user_" + strings.Repeat("z", 100000), want: ErrInvalidInputLength},
		{name: "oversized invalid body", input: "user_" + strings.Repeat("0", 5000), want: ErrInvalidInputLength},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Decode("user", tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMaxEncodedLenBoundsEveryBlock(t *testing.T) {
	assert.Len(t, base58.Encode(bytes.Repeat([]byte{0xff}, BlockSize)), MaxEncodedLen)
	c := newTestCodec(t, "s3cr3t")
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), BlockSize, BlockSize).Draw(t, "raw")
		id, err := c.Encode("user", raw)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if n := len(id) - len("user_"); n > MaxEncodedLen {
			t.Fatalf("body of %d chars exceeds %d", n, MaxEncodedLen)
		}
	})
}

func TestDecodeWithInvalidPrefixArgument(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	_, err := c.Decode("", "_abc")
	assert.ErrorIs(t, err, ErrPrefixMismatch)
}

func TestDifferentSecretsDoNotAgree(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, BlockSize)
	a, _ := newTestCodec(t, "one").Encode("user", raw)
	b, _ := newTestCodec(t, "two").Encode("user", raw)
	assert.NotEqual(t, a, b)

	got, err := newTestCodec(t, "two").Decode("user", a)
	require.NoError(t, err, "wrong secret is undetectable at the cipher level")
	assert.NotEqual(t, raw, got)
}

func TestNewIDUniqueness(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id, err := c.NewID("wait")
		require.NoError(t, err)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d ids", id, i)
		}
		seen[id] = struct{}{}
		raw, err := c.Decode("wait", id)
		require.NoError(t, err)
		again, err := c.Encode("wait", raw)
		require.NoError(t, err)
		require.Equal(t, id, again)
	}
}

func TestNewIDConcurrent(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	const workers, per = 8, 250
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*per)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id, err := c.NewID("wait")
				if err != nil {
					t.Errorf("NewID: %v", err)
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*per)
}

// Two codecs built from the same secret stand in for two processes.
func TestCrossProcessStability(t *testing.T) {
	a := newTestCodec(t, "shared-secret")
	b := newTestCodec(t, "shared-secret")
	for i := 0; i < 100; i++ {
		id, err := a.NewID("user")
		require.NoError(t, err)
		rawA, err := a.Decode("user", id)
		require.NoError(t, err)
		rawB, err := b.Decode("user", id)
		require.NoError(t, err)
		assert.Equal(t, rawA, rawB)
	}
}

func TestWithKeyDeriver(t *testing.T) {
	var fixed [KeySize]byte
	calls := 0
	c, err := New([]byte("ignored"), WithKeyDeriver(func(prefix string, _ []byte) [KeySize]byte {
		calls++
		return fixed
	}))
	require.NoError(t, err)
	raw := make([]byte, BlockSize)
	id, err := c.Encode("user", raw)
	require.NoError(t, err)

	ct, err := EncryptBlock(fixed, raw)
	require.NoError(t, err)
	assert.Equal(t, "user_"+base58.Encode(ct), id)
	_, err = c.Decode("user", id)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRandomPropagatesErrors(t *testing.T) {
	c, err := New([]byte("s3cr3t"), WithRandom(errReader{}))
	require.NoError(t, err)
	_, err = c.NewID("user")
	assert.ErrorIs(t, err, errBoom)
}

func TestValidPrefix(t *testing.T) {
	for _, p := range []string{"a", "user", "wait", "v2", "abc123"} {
		assert.True(t, ValidPrefix(p), p)
	}
	for _, p := range []string{"", "1", "A", "user_", "us-er", "usér"} {
		assert.False(t, ValidPrefix(p), p)
	}
}

func TestParse(t *testing.T) {
	prefix, body, err := Parse("wait_3YQabc")
	require.NoError(t, err)
	assert.Equal(t, "wait", prefix)
	assert.Equal(t, "3YQabc", body)

	_, _, err = Parse("nounderscore")
	assert.ErrorIs(t, err, ErrPrefixMismatch)
	_, _, err = Parse("Bad_abc")
	assert.ErrorIs(t, err, ErrPrefixMismatch)
	_, _, err = Parse("wait_")
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

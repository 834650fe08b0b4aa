package digest

import "testing"

func TestSumMatchesStreamingDigest(t *testing.T) {
	key := []byte("keykeykeykeykeykeykeykeykeykeyk")
	msg := []byte("the quick brown fox jumps over the lazy dog")

	oneShot := Sum(key, msg)

	d := New(key)
	d.Write(msg[:10])
	d.Write(msg[10:])
	streamed := d.Sum()

	if oneShot != streamed {
		t.Fatalf("streaming digest %x does not match one-shot %x", streamed, oneShot)
	}
}

func TestDigestResetAllowsReuse(t *testing.T) {
	key := []byte("keykeykeykeykeykeykeykeykeykeyk")
	d := New(key)

	d.Write([]byte("first message"))
	first := d.Sum()

	d.Reset()
	d.Write([]byte("second message"))
	second := d.Sum()

	if first == second {
		t.Fatal("expected different digests for different messages after Reset")
	}

	d.Reset()
	d.Write([]byte("first message"))
	again := d.Sum()
	if again != first {
		t.Fatal("expected Reset to allow reproducing the first digest")
	}
}

func TestSumDiffersOnKeyChange(t *testing.T) {
	msg := []byte("same message")
	a := Sum([]byte("keyonekeyonekeyonekeyonekeyone!!"), msg)
	b := Sum([]byte("keytwokeytwokeytwokeytwokeytwo!!"), msg)

	if a == b {
		t.Fatal("expected different keys to produce different digests")
	}
}

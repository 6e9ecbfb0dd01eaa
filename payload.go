package lfssim

import (
	"fmt"
	"math/rand"
	"strings"
)

// Generator synthesizes the opaque contents of one write-time data
// block. index is the block's position within the current write call
// (0-based), independent of its eventual pointer offset.
//
// Payload synthesis is explicitly non-contractual, so it is the one
// extension point the engine exposes as a name-to-handler registry
// rather than a hardcoded function, the same shape compression codecs
// use elsewhere in this package.
type Generator func(rng *rand.Rand, index int) string

var payloadGenerators = map[string]Generator{}

// RegisterGenerator adds a named payload-synthesis policy to the
// registry. Re-registering a name overwrites the previous entry.
func RegisterGenerator(name string, gen Generator) {
	payloadGenerators[name] = gen
}

// LookupGenerator returns the named policy, or false if unregistered.
func LookupGenerator(name string) (Generator, bool) {
	g, ok := payloadGenerators[name]
	return g, ok
}

const DefaultPayloadPolicy = "reference"

func init() {
	RegisterGenerator(DefaultPayloadPolicy, referencePayload)
}

// referencePayload picks a letter L = 'a' + r (r uniform in [0,26)) and
// synthesizes the payload as the token (L + index) repeated 16 times.
// The contract is "some deterministic-on-request string," not a
// specific numeric encoding, so no further transformation is needed.
func referencePayload(rng *rand.Rand, index int) string {
	l := byte('a' + rng.Intn(26))
	token := fmt.Sprintf("%c%d", l, index)
	repeated := strings.Repeat(token, 16)
	return repeated
}

// makeDataPayloads synthesizes up to n payload strings using the given
// generator and random source. A negative n yields no payloads rather
// than panicking, matching a negative write count meaning "nothing to
// write."
func makeDataPayloads(gen Generator, rng *rand.Rand, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = gen(rng, i)
	}
	return out
}

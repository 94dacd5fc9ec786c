package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	id := Fingerprint("2026-02-09", "teatro cuminetti", "arditodesio")

	assert.Len(t, id, 12)
	assert.Regexp(t, "^[0-9a-f]{12}$", id)

	// Equal tuples always yield equal ids.
	assert.Equal(t, id, Fingerprint("2026-02-09", "teatro cuminetti", "arditodesio"))
}

func TestFingerprintDistinguishesFields(t *testing.T) {
	base := Fingerprint("2026-02-09", "teatro cuminetti", "arditodesio")

	assert.NotEqual(t, base, Fingerprint("2026-02-10", "teatro cuminetti", "arditodesio"))
	assert.NotEqual(t, base, Fingerprint("2026-02-09", "teatro sociale", "arditodesio"))
	assert.NotEqual(t, base, Fingerprint("2026-02-09", "teatro cuminetti", "amleto"))

	// Field boundaries matter: shifting text across the separator
	// must change the id.
	assert.NotEqual(t,
		Fingerprint("2026-02-09", "teatro", "cuminetti arditodesio"),
		Fingerprint("2026-02-09", "teatro cuminetti", "arditodesio"),
	)
}

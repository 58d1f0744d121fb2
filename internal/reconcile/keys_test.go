package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySpacesNeverCollide(t *testing.T) {
	// A live place reference and a deleted place with the same display name
	// must address different visits
	id := int64(7)
	assert.NotEqual(t, visitKey(&id, "Cafe", "2024-06-01"), visitKey(nil, "Cafe", "2024-06-01"))
}

func TestTwoPlacesSameNameSameDate(t *testing.T) {
	a, b := int64(1), int64(2)
	assert.NotEqual(t, visitKey(&a, "Cafe", "2024-06-01"), visitKey(&b, "Cafe", "2024-06-01"))
}

func TestCandidateKeyMatchesLiveVisitKey(t *testing.T) {
	id := int64(42)
	assert.Equal(t, visitKey(&id, "anything", "2024-06-01"), candidateKey(42, "2024-06-01"))
}

func TestKeyVariesByDate(t *testing.T) {
	id := int64(1)
	assert.NotEqual(t, visitKey(&id, "Cafe", "2024-06-01"), visitKey(&id, "Cafe", "2024-06-02"))
}

package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksms/dashboard/models"
)

const (
	memberAlice = "6f9619ff-8b86-4d01-b42d-00cf4fc964ff"
	memberBob   = "16fd2706-8baf-433b-82eb-8c7fada847da"
)

func TestOwnerOf(t *testing.T) {
	allocs := models.AllocationMap{
		memberAlice: {"111", "222"},
		memberBob:   {"333"},
	}

	owner, ok := OwnerOf(allocs, "222")
	require.True(t, ok)
	assert.Equal(t, memberAlice, owner)

	owner, ok = OwnerOf(allocs, "333")
	require.True(t, ok)
	assert.Equal(t, memberBob, owner)

	_, ok = OwnerOf(allocs, "999")
	assert.False(t, ok)

	_, ok = OwnerOf(models.AllocationMap{}, "111")
	assert.False(t, ok)
}

func TestAllocateAppendsAndIsIdempotent(t *testing.T) {
	allocs := models.AllocationMap{
		memberAlice: {"111"},
	}

	next := Allocate(allocs, memberAlice, "222")
	assert.Equal(t, []string{"111", "222"}, next[memberAlice])

	// Allocating a number already held by the member changes nothing.
	again := Allocate(next, memberAlice, "222")
	assert.Equal(t, []string{"111", "222"}, again[memberAlice])

	// First allocation for an unknown member creates their entry.
	withBob := Allocate(next, memberBob, "333")
	assert.Equal(t, []string{"333"}, withBob[memberBob])

	// Input snapshot is never mutated.
	assert.Equal(t, []string{"111"}, allocs[memberAlice])
}

func TestDeallocateRemovesWhereverHeld(t *testing.T) {
	allocs := models.AllocationMap{
		memberAlice: {"111", "222"},
		memberBob:   {"333"},
	}

	next := Deallocate(allocs, "222")
	assert.Equal(t, []string{"111"}, next[memberAlice])
	assert.Equal(t, []string{"333"}, next[memberBob])

	// Deallocating an unowned number is a no-op.
	same := Deallocate(next, "999")
	assert.Equal(t, next, same)

	// Removing a member's last number keeps their entry as an empty set.
	empty := Deallocate(Deallocate(next, "111"), "333")
	require.Contains(t, empty, memberAlice)
	assert.Empty(t, empty[memberAlice])
	assert.Empty(t, empty[memberBob])

	// Input snapshot is never mutated.
	assert.Equal(t, []string{"111", "222"}, allocs[memberAlice])
}

func TestAvailableNumbers(t *testing.T) {
	inventory := []string{"111", "222", "333"}
	allocs := models.AllocationMap{
		memberAlice: {"111"},
		memberBob:   {"222"},
	}

	// Unowned numbers plus the member's own, in inventory order.
	assert.Equal(t, []string{"111", "333"}, AvailableNumbers(allocs, inventory, memberAlice))
	assert.Equal(t, []string{"222", "333"}, AvailableNumbers(allocs, inventory, memberBob))

	// Everything is available when nothing is allocated.
	assert.Equal(t, inventory, AvailableNumbers(models.AllocationMap{}, inventory, memberAlice))

	// Nothing is available when others hold the full inventory.
	full := models.AllocationMap{memberBob: {"111", "222", "333"}}
	assert.Empty(t, AvailableNumbers(full, inventory, memberAlice))
}

func TestToggleCountryGrabsAllAvailable(t *testing.T) {
	indonesia := []string{"111", "222", "333"}
	allocs := models.AllocationMap{
		memberAlice: {"999"}, // a number from another country
		memberBob:   {"222"},
	}

	next := ToggleCountry(allocs, memberAlice, indonesia)

	// Alice keeps her other-country number and takes every available
	// Indonesian number; Bob's hold on 222 is untouched.
	assert.Equal(t, []string{"999", "111", "333"}, next[memberAlice])
	assert.Equal(t, []string{"222"}, next[memberBob])
}

func TestToggleCountryReleasesWhenFullyHeld(t *testing.T) {
	indonesia := []string{"111", "222", "333"}
	allocs := models.AllocationMap{
		memberAlice: {"111", "222", "333", "999"},
	}

	next := ToggleCountry(allocs, memberAlice, indonesia)

	// Alice held everything available in the country, so the toggle
	// releases the country and leaves only her other numbers.
	assert.Equal(t, []string{"999"}, next[memberAlice])

	released := AvailableNumbers(next, indonesia, memberBob)
	assert.Equal(t, indonesia, released)
}

func TestToggleCountryPartialHoldGrabsRemainder(t *testing.T) {
	indonesia := []string{"111", "222", "333"}
	allocs := models.AllocationMap{
		memberAlice: {"111"},
		memberBob:   {"222"},
	}

	next := ToggleCountry(allocs, memberAlice, indonesia)

	// 222 is Bob's, so Alice holds one of two available numbers: the toggle
	// tops her up to everything available rather than releasing.
	assert.Equal(t, []string{"111", "333"}, next[memberAlice])
	assert.Equal(t, []string{"222"}, next[memberBob])
}

func TestToggleCountryWhenOthersHoldEverything(t *testing.T) {
	indonesia := []string{"111", "222"}
	allocs := models.AllocationMap{
		memberAlice: {"999"},
		memberBob:   {"111", "222"},
	}

	next := ToggleCountry(allocs, memberAlice, indonesia)

	// Nothing available and nothing held in the country: no change.
	assert.Equal(t, []string{"999"}, next[memberAlice])
	assert.Equal(t, []string{"111", "222"}, next[memberBob])
}

func TestToggleCountryEmptyInventory(t *testing.T) {
	allocs := models.AllocationMap{
		memberAlice: {"999"},
	}

	next := ToggleCountry(allocs, memberAlice, nil)
	assert.Equal(t, []string{"999"}, next[memberAlice])
}

func TestToggleCountryTwiceIsIdentity(t *testing.T) {
	indonesia := []string{"111", "222", "333"}

	// From a clean slate: grab everything, then give it all back.
	fresh := models.AllocationMap{}
	grabbed := ToggleCountry(fresh, memberAlice, indonesia)
	assert.Equal(t, indonesia, grabbed[memberAlice])

	restored := ToggleCountry(grabbed, memberAlice, indonesia)
	assert.Empty(t, restored[memberAlice])

	// With other members in play: both toggles respect Bob's hold, and the
	// second one restores Alice's starting set exactly.
	start := models.AllocationMap{
		memberAlice: {"999"},
		memberBob:   {"222"},
	}
	twice := ToggleCountry(ToggleCountry(start, memberAlice, indonesia), memberAlice, indonesia)
	assert.Equal(t, []string{"999"}, twice[memberAlice])
	assert.Equal(t, []string{"222"}, twice[memberBob])
}

func TestSingleOwnershipPreservedAcrossOps(t *testing.T) {
	inventory := []string{"111", "222", "333"}
	allocs := models.AllocationMap{}

	allocs = Allocate(allocs, memberAlice, "111")
	allocs = Allocate(allocs, memberBob, "222")
	allocs = ToggleCountry(allocs, memberAlice, inventory)
	allocs = Deallocate(allocs, "333")
	allocs = ToggleCountry(allocs, memberBob, inventory)

	seen := make(map[string]string)
	for member, numbers := range allocs {
		for _, n := range numbers {
			if prev, dup := seen[n]; dup {
				t.Fatalf("number %s held by both %s and %s", n, prev, member)
			}
			seen[n] = member
		}
	}
}

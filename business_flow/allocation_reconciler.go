// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/tasksms/dashboard/models"
)

// The allocation reconciler is the pure core of number ownership. Every
// function takes the current allocation snapshot and returns a new one,
// leaving the input untouched, so callers can apply the result inside a
// transaction or throw it away. Number lists are treated as sets with stable
// order: existing entries keep their position, new entries append.

// OwnerOf returns the member UUID holding number, if any. Under the
// single-ownership invariant at most one member holds a number, so scan order
// does not matter.
func OwnerOf(allocs models.AllocationMap, number string) (string, bool) {
	for memberUUID, numbers := range allocs {
		for _, n := range numbers {
			if n == number {
				return memberUUID, true
			}
		}
	}
	return "", false
}

// Allocate assigns number to memberUUID. Allocating a number the member
// already holds is a no-op, so retried requests converge. Callers are
// responsible for rejecting numbers held by someone else before applying.
func Allocate(allocs models.AllocationMap, memberUUID, number string) models.AllocationMap {
	next := allocs.Clone()
	for _, n := range next[memberUUID] {
		if n == number {
			return next
		}
	}
	next[memberUUID] = append(next[memberUUID], number)
	return next
}

// Deallocate removes number from whichever member holds it. Deallocating an
// unowned number is a no-op. Members keep their (possibly empty) entry so a
// deallocation never deletes the row shape clients subscribe to.
func Deallocate(allocs models.AllocationMap, number string) models.AllocationMap {
	next := allocs.Clone()
	for memberUUID, numbers := range next {
		filtered := make([]string, 0, len(numbers))
		for _, n := range numbers {
			if n != number {
				filtered = append(filtered, n)
			}
		}
		next[memberUUID] = filtered
	}
	return next
}

// AvailableNumbers filters inventory down to the numbers memberUUID may take:
// those nobody holds plus those the member already holds. Inventory order is
// preserved.
func AvailableNumbers(allocs models.AllocationMap, inventory []string, memberUUID string) []string {
	available := make([]string, 0, len(inventory))
	for _, number := range inventory {
		owner, owned := OwnerOf(allocs, number)
		if !owned || owner == memberUUID {
			available = append(available, number)
		}
	}
	return available
}

// ToggleCountry flips a member's hold on an entire country at once. When the
// member already holds every number available to them in the country, the
// toggle releases all of the country's numbers from their set. Otherwise it
// grabs everything available: the member's set becomes their numbers from
// other countries plus all currently available numbers of this country.
// Numbers held by other members are never touched either way.
func ToggleCountry(allocs models.AllocationMap, memberUUID string, countryNumbers []string) models.AllocationMap {
	inCountry := make(map[string]bool, len(countryNumbers))
	for _, n := range countryNumbers {
		inCountry[n] = true
	}

	mine := allocs[memberUUID]
	currentlyMine := make([]string, 0, len(mine))
	otherCountries := make([]string, 0, len(mine))
	for _, n := range mine {
		if inCountry[n] {
			currentlyMine = append(currentlyMine, n)
		} else {
			otherCountries = append(otherCountries, n)
		}
	}

	available := AvailableNumbers(allocs, countryNumbers, memberUUID)

	next := allocs.Clone()
	if len(currentlyMine) == len(available) && len(available) > 0 {
		// Fully held: release the whole country.
		next[memberUUID] = otherCountries
	} else {
		next[memberUUID] = append(otherCountries, available...)
	}
	if next[memberUUID] == nil {
		next[memberUUID] = []string{}
	}
	return next
}

package repository

import (
	"github.com/mmynk/wattcount/internal/models"
)

// groupMembers returns the members whose code normalizes equal to any code
// owned by primaryID, in storage order.
func groupMembers(users []models.User, codes []models.GroupCode, primaryID string) []models.User {
	owned := make(map[string]bool)
	for _, c := range codes {
		if c.OwnerID == primaryID {
			owned[models.NormalizeCode(c.Code)] = true
		}
	}

	members := []models.User{}
	for _, u := range users {
		if u.Role != models.RoleMember || u.GroupCode == "" {
			continue
		}
		if owned[models.NormalizeCode(u.GroupCode)] {
			members = append(members, u)
		}
	}
	return members
}

// visibleSet is {primaryID} plus the ids of primaryID's group members.
func visibleSet(users []models.User, codes []models.GroupCode, primaryID string) map[string]bool {
	set := map[string]bool{primaryID: true}
	for _, m := range groupMembers(users, codes, primaryID) {
		set[m.ID] = true
	}
	return set
}

// ownerOf returns the owner of the first stored code that normalizes equal
// to code, regardless of its used or expired state.
func ownerOf(codes []models.GroupCode, code string) (string, bool) {
	norm := models.NormalizeCode(code)
	if norm == "" {
		return "", false
	}
	for _, c := range codes {
		if models.NormalizeCode(c.Code) == norm {
			return c.OwnerID, true
		}
	}
	return "", false
}

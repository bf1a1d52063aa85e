package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainuser "flatfinder/internal/domain/user"
)

func TestRequire(t *testing.T) {
	anonymous := Actor{}
	consultant := Actor{UserID: "u-1", Roles: []domainuser.Role{domainuser.RoleConsultant}}
	admin := Actor{UserID: "u-2", Roles: []domainuser.Role{domainuser.RoleAdmin}}

	assert.ErrorIs(t, anonymous.Require(), ErrUnauthenticated)
	assert.NoError(t, consultant.Require())
	assert.NoError(t, consultant.Require(domainuser.RoleConsultant, domainuser.RoleLandlord))
	assert.ErrorIs(t, consultant.Require(domainuser.RoleLandlord), ErrForbidden)
	assert.NoError(t, admin.Require(domainuser.RoleLandlord))
}

func TestFromUserCopiesRoles(t *testing.T) {
	u := &domainuser.User{ID: "u-1", Roles: []domainuser.Role{domainuser.RoleLandlord}}
	a := FromUser(u)
	u.Roles[0] = domainuser.RoleAdmin

	assert.Equal(t, "u-1", a.UserID)
	assert.False(t, a.IsAdmin())
	assert.Equal(t, Actor{}, FromUser(nil))
}

package reference

import (
	"testing"

	errors "github.com/frahmantamala/exeat-management/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTypeRoundTrip(t *testing.T) {
	for _, ut := range UserTypes() {
		parsed, err := ParseUserType(ut.String())
		require.NoError(t, err)
		assert.Equal(t, ut, parsed)

		byID, err := UserTypeFromID(int64(ut))
		require.NoError(t, err)
		assert.Equal(t, ut, byID)
	}
}

func TestParseUserTypeNormalisesCase(t *testing.T) {
	ut, err := ParseUserType("  Security_Operative ")
	require.NoError(t, err)
	assert.Equal(t, UserTypeSecurityOperative, ut)
}

func TestUnknownUserType(t *testing.T) {
	_, err := ParseUserType("janitor")
	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)

	_, err = UserTypeFromID(9)
	assert.Error(t, err)
}

func TestExeatStatusRoundTrip(t *testing.T) {
	for _, s := range ExeatStatuses() {
		parsed, err := ParseExeatStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusDenied.Terminal())
}

func TestUnknownExeatStatus(t *testing.T) {
	_, err := ParseExeatStatus("cancelled")
	require.Error(t, err)

	_, err = ExeatStatusFromID(0)
	require.Error(t, err)
	assert.Equal(t, "status(7)", ExeatStatus(7).String())
}

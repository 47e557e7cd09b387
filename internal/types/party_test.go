package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommonPartyData_SingleContactDetail(t *testing.T) {
	email := NewCommonPartyData("p1", " Jan ", "van der", "Berg", DistributionEmail, "jan@example.nl", "0612345678")
	assert.Equal(t, "jan@example.nl", email.EmailAddress)
	assert.Empty(t, email.TelephoneNumber)
	assert.Equal(t, "Jan", email.Name)
	assert.Equal(t, "van der Berg", email.FullSurname())

	sms := NewCommonPartyData("p1", "Jan", "", "Berg", DistributionSMS, "jan@example.nl", "0612345678")
	assert.Empty(t, sms.EmailAddress)
	assert.Equal(t, "0612345678", sms.ContactDetails())
	assert.Equal(t, "Berg", sms.FullSurname())
}

func TestCommonPartyData_Method(t *testing.T) {
	m, err := NewCommonPartyData("p1", "", "", "", DistributionSMS, "", "0612345678").Method()
	require.NoError(t, err)
	assert.Equal(t, MethodSMS, m)

	_, err = NewCommonPartyData("p1", "", "", "", DistributionUnknown, "jan@example.nl", "").Method()
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeAbortNoContactDetails, appErr.Code)
}

func TestCaseStatuses_SortNewestFirst(t *testing.T) {
	first := CaseStatus{URL: "s1", SetAt: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)}
	second := CaseStatus{URL: "s2", SetAt: time.Date(2023, 9, 2, 0, 0, 0, 0, time.UTC)}
	input := []CaseStatus{first, second}

	sorted := SortNewestFirst(input)

	assert.Equal(t, CaseStatuses{second, first}, sorted)
	assert.Equal(t, "s1", input[0].URL)
	assert.False(t, sorted.WasNeverUpdated())

	newest, ok := sorted.Newest()
	require.True(t, ok)
	assert.Equal(t, "s2", newest.URL)

	_, ok = CaseStatuses{}.Newest()
	assert.False(t, ok)
}

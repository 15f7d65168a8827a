package verification

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/stretchr/testify/assert"
)

func TestMapVerificationStatus(t *testing.T) {
	cases := []struct {
		in   types.VerificationStatus
		want Status
	}{
		{types.VerificationStatusSuccess, StatusSuccess},
		{types.VerificationStatusFailed, StatusFailed},
		{types.VerificationStatusPending, StatusPending},
		{types.VerificationStatusTemporaryFailure, StatusPending},
		{types.VerificationStatusNotStarted, StatusPending},
		{types.VerificationStatus("SOMETHING_NEW"), StatusUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapVerificationStatus(tc.in), "status %s", tc.in)
	}
}

// internal/models/notification_test.go
package models

import (
	"testing"

	commonerrors "academic-notifications/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

// ==========================
// RecipientRule Validation Tests
// ==========================

func TestRecipientRule_Validate(t *testing.T) {
	tests := []struct {
		name     string
		rule     RecipientRule
		wantCode commonerrors.ErrorCode
	}{
		{
			name: "valid rule",
			rule: RecipientRule{ID: 1, Bucket: BucketTo, Kind: RuleFixedEmail, Value: "coord@uni.edu"},
		},
		{
			name:     "unknown bucket",
			rule:     RecipientRule{ID: 2, Bucket: RecipientBucket("REPLY_TO"), Kind: RuleFixedEmail, Value: "coord@uni.edu"},
			wantCode: commonerrors.ErrCodeInvalidRuleBucket,
		},
		{
			name:     "unknown kind",
			rule:     RecipientRule{ID: 3, Bucket: BucketTo, Kind: RuleKind("BY_CARRIER_PIGEON"), Value: "x"},
			wantCode: commonerrors.ErrCodeInvalidRuleKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			stdErr, ok := err.(*commonerrors.StandardError)
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

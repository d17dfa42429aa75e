package version_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novalang/nova/version"
)

func TestVersionContainsSemver(t *testing.T) {
	assert.True(t, strings.HasPrefix(version.Version(), version.VERSION))
}

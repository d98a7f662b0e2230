package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedia_Extension(t *testing.T) {
	tests := []struct {
		reference string
		want      string
	}{
		{reference: "5a3f.jpg", want: "jpg"},
		{reference: "5a3f.JPEG", want: "jpeg"},
		{reference: "5a3f.png?v=2", want: "png"},
		{reference: "5a3f.gif#frame", want: "gif"},
		{reference: "archive.tar.gz", want: "gz"},
		{reference: "noextension", want: ""},
		{reference: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			m := Media{ProviderReference: tt.reference}
			assert.Equal(t, tt.want, m.Extension())
		})
	}
}

func TestCDNStatus(t *testing.T) {
	assert.True(t, CDNStatusToFlush.IsValid())
	assert.True(t, CDNStatusToFlush.IsPending())
	assert.False(t, CDNStatusOK.IsPending())
	assert.False(t, CDNStatusError.IsPending())
	assert.False(t, CDNStatus("DONE").IsValid())
}

func TestErrorHelpers(t *testing.T) {
	err := ResizerNotFound("thumbnail.generate", "crop")
	assert.True(t, IsResizerNotFound(err))
	assert.Equal(t, EINVALID, ErrorCode(err))
	assert.Equal(t, "thumbnail.generate", ErrorOp(err))
	assert.Contains(t, err.Error(), `"crop"`)

	err = Unsupported("thumbnail.static.private_url", "static icons have no private url")
	assert.True(t, IsUnsupported(err))
	assert.Equal(t, ENOTIMPL, ErrorCode(err))

	assert.True(t, IsMissingMediaID(MissingMediaID("op")))
}

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Triple
	}{
		{
			name: "x86_64-unknown-linux-gnu",
			want: Triple{Name: "x86_64-unknown-linux-gnu"},
		},
		{
			name: "x86_64-pc-windows-msvc",
			want: Triple{Name: "x86_64-pc-windows-msvc", Windows: true, MSVC: true},
		},
		{
			name: "x86_64-pc-windows-gnu",
			want: Triple{Name: "x86_64-pc-windows-gnu", Windows: true},
		},
		{
			name: "x86_64-apple-darwin",
			want: Triple{Name: "x86_64-apple-darwin", Darwin: true},
		},
		{
			name: "aarch64-apple-ios",
			want: Triple{Name: "aarch64-apple-ios", IOS: true},
		},
		{
			name: "thumbv7m-none-eabi",
			want: Triple{Name: "thumbv7m-none-eabi", BareMetal: true},
		},
		{
			name: "x86_64-unknown-linux-musl",
			want: Triple{Name: "x86_64-unknown-linux-musl", Musl: true},
		},
		{
			name: "asmjs-unknown-emscripten",
			want: Triple{Name: "asmjs-unknown-emscripten", Emscripten: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestExeSuffix(t *testing.T) {
	if HostIsWindows() {
		assert.Equal(t, ".exe", ExeSuffix())
	} else {
		assert.Empty(t, ExeSuffix())
	}
}

package rendergraph

import "testing"

func TestImageSizeModeResolve(t *testing.T) {
	tests := []struct {
		name       string
		mode       ImageSizeMode
		refW, refH uint32
		wantW      uint32
		wantH      uint32
	}{
		{"absolute ignores reference", AbsoluteSize(256, 128), 1920, 1080, 256, 128},
		{"full relative", ContextRelativeSize(1, 1), 1920, 1080, 1920, 1080},
		{"half height", ContextRelativeSize(1, 0.5), 800, 600, 800, 300},
		{"quarter", ContextRelativeSize(0.25, 0.25), 1024, 1024, 256, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.mode.Resolve(tt.refW, tt.refH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Resolve(%d, %d) = %dx%d, want %dx%d",
					tt.refW, tt.refH, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestImageSizeModeIsContextRelative(t *testing.T) {
	if AbsoluteSize(64, 64).IsContextRelative() {
		t.Error("AbsoluteSize reported context-relative")
	}
	if !ContextRelativeSize(1, 1).IsContextRelative() {
		t.Error("ContextRelativeSize not reported context-relative")
	}
}

func TestResourceKindString(t *testing.T) {
	tests := []struct {
		kind ResourceKind
		want string
	}{
		{KindImage, "Image"},
		{KindBuffer, "Buffer"},
		{KindVirtual, "Virtual"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestOriginCollapsesMoveChains(t *testing.T) {
	infos := []resourceInfo{
		{name: "A", movedFrom: InvalidResource, movedTo: 1},
		{name: "B", movedFrom: 0, movedTo: 2},
		{name: "C", movedFrom: 1, movedTo: InvalidResource},
		{name: "D", movedFrom: InvalidResource, movedTo: InvalidResource},
	}
	if got := origin(infos, 2); got != 0 {
		t.Errorf("origin(C) = %d, want 0", got)
	}
	if got := origin(infos, 0); got != 0 {
		t.Errorf("origin(A) = %d, want 0", got)
	}
	if got := origin(infos, 3); got != 3 {
		t.Errorf("origin(D) = %d, want 3", got)
	}
}

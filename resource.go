package rendergraph

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// ResourceName identifies a logical resource within one graph.
//
// Names are chosen by pass authors and are not unique across the graph's
// lifetime: a Move closes the version behind a name and defines a fresh
// version under the destination name. The compiler interns names into dense
// ResourceID values during assembly; all later stages operate on IDs.
type ResourceName string

// ResourceID is a dense identifier for one version of a resource.
// Two versions that share a textual name still have distinct IDs.
type ResourceID int

// PassID is a dense identifier for a pass, assigned in declaration order.
type PassID int

// InvalidResource is returned by lookups that find no resource.
const InvalidResource ResourceID = -1

// ResourceKind distinguishes the backing storage of a resource.
type ResourceKind uint8

const (
	// KindImage is a 2D texture resource.
	KindImage ResourceKind = iota + 1

	// KindBuffer is a linear buffer resource.
	KindBuffer

	// KindVirtual is a dependency-only resource. Virtual resources carry no
	// data and are never materialized; they exist to order passes that
	// communicate through state the graph does not track.
	KindVirtual
)

// String returns the string representation of ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case KindImage:
		return "Image"
	case KindBuffer:
		return "Buffer"
	case KindVirtual:
		return "Virtual"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// ImageUsage is a bitmask specifying how an image will be used.
type ImageUsage uint32

// Image usage flags.
const (
	// ImageUsageSampled indicates the image can be bound as a sampled texture.
	ImageUsageSampled ImageUsage = 1 << 0

	// ImageUsageStorage indicates the image can be bound as a storage texture.
	ImageUsageStorage ImageUsage = 1 << 1

	// ImageUsageColorAttachment indicates the image can be a render target.
	ImageUsageColorAttachment ImageUsage = 1 << 2

	// ImageUsageDepthStencil indicates the image can be a depth/stencil attachment.
	ImageUsageDepthStencil ImageUsage = 1 << 3

	// ImageUsageCopySrc indicates the image can be used as a copy source.
	ImageUsageCopySrc ImageUsage = 1 << 4

	// ImageUsageCopyDst indicates the image can be used as a copy destination.
	ImageUsageCopyDst ImageUsage = 1 << 5
)

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageStorage indicates the buffer can be bound as a storage buffer.
	BufferUsageStorage BufferUsage = 1 << 0

	// BufferUsageUniform indicates the buffer can be bound as a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 1

	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 3
)

// sizeModeKind tags the variant held by an ImageSizeMode.
type sizeModeKind uint8

const (
	sizeAbsolute sizeModeKind = iota + 1
	sizeContextRelative
)

// ImageSizeMode determines the dimensions of an image resource.
//
// Absolute sizes are fixed at declaration time. Context-relative sizes are
// resolved against the reference size of the ExecutionContext at execution
// time, so a graph can follow window resizes without being rebuilt.
type ImageSizeMode struct {
	kind sizeModeKind

	width  uint32
	height uint32

	relWidth  float32
	relHeight float32
}

// AbsoluteSize returns a size mode with fixed pixel dimensions.
func AbsoluteSize(width, height uint32) ImageSizeMode {
	return ImageSizeMode{kind: sizeAbsolute, width: width, height: height}
}

// ContextRelativeSize returns a size mode that scales with the execution
// context's reference size. A factor of 1 matches the reference dimension,
// 0.5 is half of it.
func ContextRelativeSize(widthFactor, heightFactor float32) ImageSizeMode {
	return ImageSizeMode{kind: sizeContextRelative, relWidth: widthFactor, relHeight: heightFactor}
}

// IsContextRelative reports whether the size depends on the execution context.
func (m ImageSizeMode) IsContextRelative() bool {
	return m.kind == sizeContextRelative
}

// hash folds the size mode into a single word for structural fingerprints.
func (m ImageSizeMode) hash() uint64 {
	var a, b uint32
	if m.kind == sizeContextRelative {
		a, b = math.Float32bits(m.relWidth), math.Float32bits(m.relHeight)
	} else {
		a, b = m.width, m.height
	}
	return uint64(m.kind)<<40 ^ uint64(a)<<20 ^ uint64(b)
}

// Resolve returns the absolute pixel dimensions for the given reference size.
func (m ImageSizeMode) Resolve(refWidth, refHeight uint32) (uint32, uint32) {
	if m.kind == sizeContextRelative {
		return uint32(float64(m.relWidth) * float64(refWidth)),
			uint32(float64(m.relHeight) * float64(refHeight))
	}
	return m.width, m.height
}

// ImageCreateInfo describes an image resource declared by a pass.
type ImageCreateInfo struct {
	// Format is the texel format of the image.
	Format gputypes.TextureFormat

	// Size determines the image dimensions, either fixed or relative to the
	// execution context's reference size.
	Size ImageSizeMode

	// Usage specifies how the image will be used.
	Usage ImageUsage
}

// BufferCreateInfo describes a buffer resource declared by a pass.
type BufferCreateInfo struct {
	// Size is the buffer size in bytes.
	Size uint64

	// Usage specifies how the buffer will be used.
	Usage BufferUsage
}

// resourceInfo is the interned record of one resource version.
type resourceInfo struct {
	name ResourceName
	kind ResourceKind

	image  ImageCreateInfo
	buffer BufferCreateInfo

	// definedBy is the pass that created or moved-into this version.
	definedBy PassID

	// movedFrom is the previous version when this version was produced by a
	// move, or InvalidResource for created resources.
	movedFrom ResourceID

	// movedTo is the next version when this version has been closed by a
	// move, or InvalidResource while the version is still open.
	movedTo ResourceID
}

// origin follows the move chain of infos backwards and returns the ID of
// the version that carries the creation parameters.
func origin(infos []resourceInfo, id ResourceID) ResourceID {
	for infos[id].movedFrom != InvalidResource {
		id = infos[id].movedFrom
	}
	return id
}

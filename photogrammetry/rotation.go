package photogrammetry

import "fmt"

// Rotations applied to the extrinsics of a camera whose image is turned clockwise
// by 90, 180 and 270 degrees.
var (
	Rot90  = Mat3{0, 1, 0, -1, 0, 0, 0, 0, 1}
	Rot180 = Mat3{-1, 0, 0, 0, -1, 0, 0, 0, 1}
	Rot270 = Mat3{0, -1, 0, 1, 0, 0, 0, 0, 1}
)

// Projection is the single precision parameter set of a camera, possibly remapped
// for a rotated image.
type Projection struct {
	K    Mat3f
	R    Mat3f
	T    Vec3f
	P    Mat4f
	InvP Mat4f
	C    Vec3f
}

func (c Camera) project(k Mat3, rot Mat3, trans Vec3) Projection {
	matrices := BuildProjectionMatrices(k, rot, trans, c.LastRow)
	return Projection{
		K:    k.Float32(),
		R:    rot.Float32(),
		T:    trans.Float32(),
		P:    matrices.P.Float32(),
		InvP: matrices.InvP.Float32(),
		C:    ProjectionCenter(rot, trans).Float32(),
	}
}

// Original returns the stored parameters with their projection matrices and center.
func (c Camera) Original() Projection {
	return c.project(c.K, c.R, c.T)
}

// Rotate90Multi returns the parameters of the camera for its image rotated cnt times
// by 90 degrees clockwise. Negative counts rotate counter-clockwise.
func (c Camera) Rotate90Multi(cnt, width, height int) Projection {
	switch ((cnt % 4) + 4) % 4 {
	case 0:
		return c.Original()
	case 1:
		return c.Rotate90(width, height)
	case 2:
		return c.Rotate180(width, height)
	case 3:
		return c.Rotate270(width, height)
	default:
		panic(fmt.Sprintf("unreachable rotation count %d", cnt))
	}
}

// The principal point remaps below use the unrotated width and height for both axes.
// TODO: check with the depth fusion consumers whether 90/270 should swap width and height.

func (c Camera) Rotate90(width, height int) Projection {
	fx, cx, fy, cy := c.K[0], c.K[2], c.K[4], c.K[5]
	k := Mat3{
		fy, 0, cy,
		0, fx, -cx + float64(width) - 1,
		0, 0, 1,
	}
	return c.project(k, Rot90.Mul(c.R), Rot90.MulVec(c.T))
}

func (c Camera) Rotate180(width, height int) Projection {
	fx, cx, fy, cy := c.K[0], c.K[2], c.K[4], c.K[5]
	k := Mat3{
		fx, 0, -cx + float64(width) - 1,
		0, fy, -cy + float64(height) - 1,
		0, 0, 1,
	}
	return c.project(k, Rot180.Mul(c.R), Rot180.MulVec(c.T))
}

func (c Camera) Rotate270(width, height int) Projection {
	fx, cx, fy, cy := c.K[0], c.K[2], c.K[4], c.K[5]
	k := Mat3{
		fy, 0, -cy + float64(height) - 1,
		0, fx, cx,
		0, 0, 1,
	}
	return c.project(k, Rot270.Mul(c.R), Rot270.MulVec(c.T))
}

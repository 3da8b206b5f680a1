package photogrammetry

import "github.com/go-gl/mathgl/mgl32"

// RelativePose returns the rotation R2·R1ᵗ and translation T2 - R·T1 taking the frame of
// camera 1 into the frame of camera 2. Single precision only; good enough to seed a
// homography, not for chaining poses.
func RelativePose(r1 Mat3f, t1 Vec3f, r2 Mat3f, t2 Vec3f) (Mat3f, Vec3f) {
	// mgl32 is column-major, so a row-major array reads as the transpose.
	rot1 := mgl32.Mat3(r1).Transpose()
	rot2 := mgl32.Mat3(r2).Transpose()

	rot := rot2.Mul3(rot1.Transpose())
	trans := mgl32.Vec3(t2).Sub(rot.Mul3x1(mgl32.Vec3(t1)))

	return Mat3f(rot.Transpose()), Vec3f(trans)
}

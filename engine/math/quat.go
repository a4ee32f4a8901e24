package math

/**
 * @brief Creates an identity quaternion.
 */
func NewQuatIdentity() Quaternion {
	return Quaternion{W: 1.0}
}

/**
 * @brief Returns the normal of the provided quaternion.
 */
func (q Quaternion) Normal() float32 {
	return ksqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

/**
 * @brief Returns a normalized copy of the supplied quaternion.
 */
func (q Quaternion) Normalize() Quaternion {
	n := q.Normal()
	if n == 0 {
		return NewQuatIdentity()
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

/**
 * @brief Multiplies the provided quaternions.
 */
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.X*other.W + q.Y*other.Z - q.Z*other.Y + q.W*other.X,
		Y: -q.X*other.Z + q.Y*other.W + q.Z*other.X + q.W*other.Y,
		Z: q.X*other.Y - q.Y*other.X + q.Z*other.W + q.W*other.Z,
		W: -q.X*other.X - q.Y*other.Y - q.Z*other.Z + q.W*other.W,
	}
}

func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

/**
 * @brief Creates a rotation matrix from the given quaternion.
 */
func (q Quaternion) ToMat4() Mat4 {
	// https://stackoverflow.com/questions/1556260/convert-quaternion-rotation-to-rotation-matrix
	n := q.Normalize()

	out := NewMat4Identity()
	out.Data[0] = 1.0 - 2.0*n.Y*n.Y - 2.0*n.Z*n.Z
	out.Data[1] = 2.0*n.X*n.Y - 2.0*n.Z*n.W
	out.Data[2] = 2.0*n.X*n.Z + 2.0*n.Y*n.W

	out.Data[4] = 2.0*n.X*n.Y + 2.0*n.Z*n.W
	out.Data[5] = 1.0 - 2.0*n.X*n.X - 2.0*n.Z*n.Z
	out.Data[6] = 2.0*n.Y*n.Z - 2.0*n.X*n.W

	out.Data[8] = 2.0*n.X*n.Z - 2.0*n.Y*n.W
	out.Data[9] = 2.0*n.Y*n.Z + 2.0*n.X*n.W
	out.Data[10] = 1.0 - 2.0*n.X*n.X - 2.0*n.Y*n.Y
	return out
}

/**
 * @brief Creates a quaternion from the given axis and angle.
 */
func NewQuatFromAxisAngle(axis Vec3, angle float32, normalize bool) Quaternion {
	halfAngle := 0.5 * angle
	s := ksin(halfAngle)
	c := kcos(halfAngle)
	q := Quaternion{X: s * axis.X, Y: s * axis.Y, Z: s * axis.Z, W: c}
	if normalize {
		return q.Normalize()
	}
	return q
}

// NewQuatFromEuler builds a rotation from Euler angles in radians
// (X = roll, Y = pitch, Z = yaw).
func NewQuatFromEuler(euler Vec3) Quaternion {
	cr, sr := kcos(euler.X*0.5), ksin(euler.X*0.5)
	cp, sp := kcos(euler.Y*0.5), ksin(euler.Y*0.5)
	cy, sy := kcos(euler.Z*0.5), ksin(euler.Z*0.5)

	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// ToEuler returns the Euler angles in radians matching NewQuatFromEuler.
// Pitch is clamped to [-pi/2, pi/2] at the gimbal lock.
func (q Quaternion) ToEuler() Vec3 {
	n := q.Normalize()

	sinrCosp := 2 * (n.W*n.X + n.Y*n.Z)
	cosrCosp := 1 - 2*(n.X*n.X+n.Y*n.Y)

	sinp := Clamp(2*(n.W*n.Y-n.Z*n.X), -1, 1)

	sinyCosp := 2 * (n.W*n.Z + n.X*n.Y)
	cosyCosp := 1 - 2*(n.Y*n.Y+n.Z*n.Z)

	return Vec3{
		X: katan2(sinrCosp, cosrCosp),
		Y: kasin(sinp),
		Z: katan2(sinyCosp, cosyCosp),
	}
}

/**
 * @brief Calculates spherical linear interpolation of a given percentage
 * between two quaternions.
 */
func (q Quaternion) Slerp(other Quaternion, percentage float32) Quaternion {
	v0 := q.Normalize()
	v1 := other.Normalize()

	dot := v0.Dot(v1)
	// take the short path
	if dot < 0.0 {
		v1 = Quaternion{X: -v1.X, Y: -v1.Y, Z: -v1.Z, W: -v1.W}
		dot = -dot
	}

	const dotThreshold float32 = 0.9995
	if dot > dotThreshold {
		out := Quaternion{
			X: v0.X + (v1.X-v0.X)*percentage,
			Y: v0.Y + (v1.Y-v0.Y)*percentage,
			Z: v0.Z + (v1.Z-v0.Z)*percentage,
			W: v0.W + (v1.W-v0.W)*percentage,
		}
		return out.Normalize()
	}

	theta0 := kacos(dot)
	theta := theta0 * percentage
	sinTheta := ksin(theta)
	sinTheta0 := ksin(theta0)

	s0 := kcos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quaternion{
		X: v0.X*s0 + v1.X*s1,
		Y: v0.Y*s0 + v1.Y*s1,
		Z: v0.Z*s0 + v1.Z*s1,
		W: v0.W*s0 + v1.W*s1,
	}
}

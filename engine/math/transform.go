package math

func NewTransform() Transform {
	return NewTransformFromPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func NewTransformFromPosition(position Vec3) Transform {
	return NewTransformFromPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
}

func NewTransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) Transform {
	t := Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	return t
}

func (t *Transform) Position() Vec3 { return t.position }

func (t *Transform) Rotation() Quaternion { return t.rotation }

func (t *Transform) Scale() Vec3 { return t.scale }

// IsDirty reports whether the cached matrices are stale.
func (t *Transform) IsDirty() bool { return t.dirty }

func (t *Transform) SetPosition(position Vec3) {
	t.position = position
	t.dirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.position = t.position.Add(translation)
	t.dirty = true
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.rotation = rotation
	t.dirty = true
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.rotation = t.rotation.Mul(rotation)
	t.dirty = true
}

func (t *Transform) SetScale(scale Vec3) {
	t.scale = scale
	t.dirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.position = position
	t.rotation = rotation
	t.scale = scale
	t.dirty = true
}

// RecomputeIfDirty rebuilds the local matrix (scale, then rotation, then translation)
// and its inverse when a mutator ran since the last read.
func (t *Transform) RecomputeIfDirty() {
	if !t.dirty {
		return
	}
	s := NewMat4Scale(t.scale)
	r := t.rotation.ToMat4()
	t.local = s.Mul(r).Mul(NewMat4Translation(t.position))
	t.inverse = t.local.Inverse()
	t.dirty = false
}

func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	t.RecomputeIfDirty()
	return t.local
}

func (t *Transform) GetInverse() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	t.RecomputeIfDirty()
	return t.inverse
}

func (t *Transform) GetWorld() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	l := t.GetLocal()
	if t.Parent != nil {
		return l.Mul(t.Parent.GetWorld())
	}
	return l
}

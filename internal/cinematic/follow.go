package cinematic

import "github.com/san-kum/celestia/internal/dynamo"

const (
	FollowSmoothing = 0.05
	FollowDistance  = 40.0
)

// Follow eases the camera target toward pos and pulls the camera in when it is
// farther than FollowDistance, keeping its bearing.
func Follow(cam *Camera, pos dynamo.Vec3) {
	cam.Target = cam.Target.Lerp(pos, FollowSmoothing)

	offset := cam.Position.Sub(cam.Target)
	if offset.Length() <= FollowDistance {
		return
	}
	want := cam.Target.Add(offset.Normalize().Scale(FollowDistance))
	cam.Position = cam.Position.Lerp(want, FollowSmoothing)
}

package pose

// Skeleton lists the keypoint pairs joined by a limb, matching MoveNet's adjacency.
var Skeleton = [][2]int{
	{Nose, LeftEye}, {Nose, RightEye},
	{LeftEye, LeftEar}, {RightEye, RightEar},
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip},
	{LeftHip, RightHip},
	{LeftHip, LeftKnee}, {LeftKnee, LeftAnkle},
	{RightHip, RightKnee}, {RightKnee, RightAnkle},
}

// VisiblePairs returns the skeleton limbs whose two endpoints both clear threshold.
func VisiblePairs(kps []Keypoint, threshold float64) [][2]int {
	var pairs [][2]int
	for _, pair := range Skeleton {
		if pair[0] >= len(kps) || pair[1] >= len(kps) {
			continue
		}
		if kps[pair[0]].Visible(threshold) && kps[pair[1]].Visible(threshold) {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

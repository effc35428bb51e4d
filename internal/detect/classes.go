package detect

// DefaultObjectClasses is the label set of the object detection model,
// indexed by class id.
var DefaultObjectClasses = []string{
	"door", "window", "wall", "stairs", "toilet", "sink", "bathtub",
	"sofa", "table", "chair", "bed", "refrigerator",
}

// DefaultRegionClasses is the label set of the instance-segmentation model,
// indexed by class id.
var DefaultRegionClasses = []string{
	"wall", "door", "window", "room", "stairs",
	"bathroom", "kitchen", "bedroom", "living_room",
}

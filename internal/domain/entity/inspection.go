package entity

// InspectionResult хранит итог разметки изображения.
type InspectionResult struct {
	ImageWidth    int             // ширина загруженного изображения
	ImageHeight   int             // высота загруженного изображения
	Source        Dimensions      // размеры, в которых модель вернула рамки
	Boxes         []NormalizedBox // рамки в единичных координатах
	HasDetections bool            // флаг наличия рамок
}

// Description хранит текстовое описание найденных областей.
type Description struct {
	Text string
}

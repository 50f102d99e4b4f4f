package overlay

// Таблицы псевдонимов полей. Порядок задаёт приоритет: побеждает первый
// ключ, который удалось прочитать.
var (
	minXKeys = []string{"xmin", "x_min", "x1", "left", "col", "column", "minX", "min_x", "x0"}
	minYKeys = []string{"ymin", "y_min", "y1", "top", "row", "line", "minY", "min_y", "y0"}
	maxXKeys = []string{"xmax", "x_max", "x2", "right", "maxX", "max_x"}
	maxYKeys = []string{"ymax", "y_max", "y2", "bottom", "maxY", "max_y"}

	widthKeys  = []string{"width", "w", "span_x", "deltaX"}
	heightKeys = []string{"height", "h", "span_y", "deltaY"}

	originXKeys = []string{"x", "cx", "originX", "left"}
	originYKeys = []string{"y", "cy", "originY", "top"}

	centerXKeys = []string{"center_x", "centerX", "x_center"}
	centerYKeys = []string{"center_y", "centerY", "y_center"}

	normalizedKeys = []string{"normalized", "isNormalized", "relative"}

	// вложенная геометрия внутри объекта детекции
	geometryKeys = []string{"bbox", "box", "bounding_box", "boundingBox", "rect", "coordinates"}

	labelKeys  = []string{"label", "class", "category", "name", "id", "type", "class_name", "className"}
	scoreKeys  = []string{"score", "confidence", "probability", "value", "conf", "prob"}
	metricKeys = []string{"metrics", "metric", "stats", "attributes"}

	// где в ответе API может лежать список детекций
	bucketKeys    = []string{"bounding_boxes", "boundingBoxes", "boxes", "detections", "predictions", "results", "anomalies", "defects", "objects", "annotations"}
	envelopeKeys  = []string{"data", "result", "output"}
	containerKeys = []string{"image", "input", "meta", "metadata", "dimensions", "original", "image_size", "imageSize", "size"}

	dimWidthKeys   = []string{"width", "w", "cols", "columns"}
	dimHeightKeys  = []string{"height", "h", "rows", "lines"}
	flatWidthKeys  = []string{"image_width", "imageWidth", "width", "input_width", "inputWidth", "img_width"}
	flatHeightKeys = []string{"image_height", "imageHeight", "height", "input_height", "inputHeight", "img_height"}
)

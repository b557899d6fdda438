package constants

// 支持的输入MIME类型
const (
	MIMEPDF        = "application/pdf"
	MIMEWordLegacy = "application/msword"
	MIMEWordModern = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPNG        = "image/png"
	MIMEJPEG       = "image/jpeg"
	MIMETIFF       = "image/tiff"
)

// 默认阈值，可被配置覆盖
const (
	// DefaultMinDirectTextLen 直接提取文本低于该长度时视为扫描件，转入OCR
	DefaultMinDirectTextLen = 100

	// DefaultOCRDPI OCR渲染分辨率，按识别精度而非屏幕显示选择
	DefaultOCRDPI = 300

	// DefaultMaxOCRPages 单文档OCR页数上限，0表示不限制
	DefaultMaxOCRPages = 20
)

// ExtByMIME MIME类型到规范扩展名的映射
var ExtByMIME = map[string]string{
	MIMEPDF:        ".pdf",
	MIMEWordLegacy: ".doc",
	MIMEWordModern: ".docx",
	MIMEPNG:        ".png",
	MIMEJPEG:       ".jpg",
	MIMETIFF:       ".tiff",
}

// MIMEByExt 扩展名到MIME类型的映射，用于文件名嗅探
var MIMEByExt = map[string]string{
	".pdf":  MIMEPDF,
	".doc":  MIMEWordLegacy,
	".docx": MIMEWordModern,
	".png":  MIMEPNG,
	".jpg":  MIMEJPEG,
	".jpeg": MIMEJPEG,
	".tif":  MIMETIFF,
	".tiff": MIMETIFF,
}

// IsImageMIME 判断是否为纯图片输入
func IsImageMIME(mime string) bool {
	return mime == MIMEPNG || mime == MIMEJPEG || mime == MIMETIFF
}

// IsWordMIME 判断是否为Word家族文档
func IsWordMIME(mime string) bool {
	return mime == MIMEWordLegacy || mime == MIMEWordModern
}

// IsSupportedMIME 判断MIME类型是否受支持
func IsSupportedMIME(mime string) bool {
	_, ok := ExtByMIME[mime]
	return ok
}

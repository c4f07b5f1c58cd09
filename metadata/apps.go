package metadata

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/arloliu/ngb/encoding"
	"github.com/arloliu/ngb/format"
)

// versionRe matches the application version string the instrument software
// writes, e.g. "Version 8.0.3".
var versionRe = regexp.MustCompile(`^\s*Version\s+\d+\.\d+\.\d+`)

// extractApplicationStrings locates the application/license string
// container and classifies its strings by content shape: a "Version x.y.z"
// string is the application version, and the longest multi-line string not
// starting with "Version" is the license holder. The container has no
// per-string labels, so shape is all there is to go on.
func (e *Extractor) extractApplicationStrings(buf []byte, meta Metadata) {
	catIdx := bytes.Index(buf, catApplication)
	if catIdx < 0 {
		return
	}

	winEnd := catIdx + format.AppContainerWindow
	if winEnd > len(buf) {
		winEnd = len(buf)
	}
	window := buf[catIdx:winEnd]

	fieldIdx := bytes.Index(window, appLicenseField)
	if fieldIdx < 0 {
		return
	}
	region := window[fieldIdx:]

	var version, license string
	for _, occ := range e.anyValue.findAll(region) {
		if occ.dtype != format.TypeString {
			continue
		}

		val, ok := encoding.DecodeValue(occ.dtype, occ.value)
		if !ok {
			continue
		}
		s, isString := val.(string)
		if !isString || s == "" {
			continue
		}

		switch {
		case versionRe.MatchString(s):
			if version == "" {
				version = s
			}
		case strings.Contains(s, "\n") && !strings.HasPrefix(strings.TrimSpace(s), "Version"):
			if len(s) > len(license) {
				license = s
			}
		}
	}

	if version != "" {
		meta.setIfAbsent("application_version", version)
	}
	if license != "" {
		meta.setIfAbsent("licensed_to", license)
	}
}

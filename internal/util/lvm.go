package util

import "strings"

const (
	mapperPrefix = "/dev/mapper/"
	// dashMarker never occurs in a device-mapper name.
	dashMarker = "\x00"
)

// LVMAlias maps a device-mapper path such as /dev/mapper/vg-lv to its LVM
// form /dev/vg/lv. Inside the mapper name "--" stands for a literal dash and
// the first single dash separates volume group from logical volume. It
// reports false for paths outside /dev/mapper/ and for names without a
// separator.
func LVMAlias(device string) (string, bool) {
	name, ok := strings.CutPrefix(device, mapperPrefix)
	if !ok {
		return "", false
	}
	name = strings.ReplaceAll(name, "--", dashMarker)
	vg, lv, ok := strings.Cut(name, "-")
	if !ok {
		return "", false
	}
	vg = strings.ReplaceAll(vg, dashMarker, "-")
	lv = strings.ReplaceAll(lv, dashMarker, "-")
	return "/dev/" + vg + "/" + lv, true
}

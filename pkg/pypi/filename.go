// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package pypi

import (
	"strings"

	"github.com/google/pypindex/pkg/archive"
)

// ValidFilename reports whether filename is a well-formed distribution
// filename consistent with info. Wheels follow the name-version-python-abi-
// platform scheme with an optional build tag; every other recognized suffix
// must carry a name-version base. Names compare in normalized form, versions
// byte for byte. A false return signals a rejectable upload, not an internal
// error.
func ValidFilename(info PackageInfo, filename string) bool {
	switch archive.FormatFor(filename) {
	case archive.ZipFormat:
		if base, ok := strings.CutSuffix(filename, ".whl"); ok {
			return validWheelBase(info, base)
		}
		return validSdistBase(info, strings.TrimSuffix(filename, ".zip"))
	case archive.TarGzFormat:
		return validSdistBase(info, strings.TrimSuffix(filename, ".tar.gz"))
	case archive.TarBz2Format:
		return validSdistBase(info, strings.TrimSuffix(filename, ".tar.bz2"))
	case archive.TarZFormat:
		return validSdistBase(info, strings.TrimSuffix(filename, ".tar.Z"))
	case archive.TarFormat:
		return validSdistBase(info, strings.TrimSuffix(filename, ".tar"))
	default:
		return false
	}
}

func validWheelBase(info PackageInfo, base string) bool {
	fields := strings.Split(base, "-")
	if len(fields) != 5 && len(fields) != 6 {
		return false
	}
	return Normalize(fields[0]) == Normalize(info.Name) && fields[1] == info.Version
}

func validSdistBase(info PackageInfo, base string) bool {
	name, ok := strings.CutSuffix(base, "-"+info.Version)
	if !ok || info.Version == "" {
		return false
	}
	return Normalize(name) == Normalize(info.Name)
}

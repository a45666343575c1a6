package domain

import (
	"fmt"
	"slices"

	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

// Shoe sizes offered on every product page.
const (
	MinSize = 38
	MaxSize = 47
)

// Colors offered on every product page.
const (
	ColorNavy  = "navy"
	ColorGreen = "green"

	DefaultColor = ColorNavy
)

// AvailableColors lists the selectable colors in display order.
var AvailableColors = []string{ColorNavy, ColorGreen}

// AvailableSizes lists the selectable sizes in ascending order.
func AvailableSizes() []int {
	sizes := make([]int, 0, MaxSize-MinSize+1)
	for s := MinSize; s <= MaxSize; s++ {
		sizes = append(sizes, s)
	}
	return sizes
}

// ValidateVariant checks a size/color selection before anything is added to
// the cart. An empty color means DefaultColor and is returned resolved.
func ValidateVariant(size int, color string) (string, error) {
	if size == 0 {
		return "", apperrors.InvalidInput("please select a size")
	}
	if size < MinSize || size > MaxSize {
		return "", apperrors.InvalidInput(fmt.Sprintf("size must be between %d and %d", MinSize, MaxSize))
	}
	if color == "" {
		color = DefaultColor
	}
	if !slices.Contains(AvailableColors, color) {
		return "", apperrors.InvalidInput(fmt.Sprintf("color must be one of %v", AvailableColors))
	}
	return color, nil
}

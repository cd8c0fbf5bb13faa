package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type color string

type shade string

var (
	colorRed  = New(color("red"))
	colorBlue = New(color("blue"))

	shadeRed = New(shade("red"))
)

func TestToEnum(t *testing.T) {
	red, err := ToEnum[color]("red")
	require.NoError(t, err)
	require.Equal(t, colorRed, red)

	blue, err := ToEnum[color]("blue")
	require.NoError(t, err)
	require.Equal(t, colorBlue, blue)

	_, err = ToEnum[color]("green")
	require.Error(t, err)
}

func TestToEnumKeepsTypesApart(t *testing.T) {
	got, err := ToEnum[shade]("red")
	require.NoError(t, err)
	require.Equal(t, shadeRed, got)

	// A value registered only on color is not a shade.
	_, err = ToEnum[shade]("blue")
	require.Error(t, err)
}

package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr bool
	}{
		{name: "named", id: Named{RawName: "CreateFileW"}},
		{name: "named with friendly", id: Named{RawName: "?foo@@YAXXZ", FriendlyName: strPtr("void foo(void)")}},
		{name: "empty raw name", id: Named{}, wantErr: true},
		{name: "blank friendly", id: Named{RawName: "CreateFileW", FriendlyName: strPtr("  ")}, wantErr: true},
		{name: "ordinal", id: Ordinal{DLLName: "ws2_32.dll", Ordinal: 3}},
		{name: "ordinal zero", id: Ordinal{DLLName: "ws2_32.dll", Ordinal: 0}},
		{name: "ordinal without dll", id: Ordinal{Ordinal: 3}, wantErr: true},
		{name: "negative ordinal", id: Ordinal{DLLName: "ws2_32.dll", Ordinal: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "CreateFileW", Named{RawName: "CreateFileW"}.DisplayName())
	require.Equal(t, "closesocket", Ordinal{DLLName: "wsock32.dll", Ordinal: 3, FriendlyName: strPtr("closesocket")}.DisplayName())
	require.Equal(t, "wsock32.dll#3", Ordinal{DLLName: "wsock32.dll", Ordinal: 3}.DisplayName())
}

func TestFromPartsRequiresExactlyOneForm(t *testing.T) {
	named, err := FromParts(strPtr("GetProcAddress"), nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, KindNamed, named.Kind())

	ord, err := FromParts(nil, strPtr("shell32.dll"), intPtr(680), strPtr("IsUserAnAdmin"))
	require.NoError(t, err)
	require.Equal(t, Ordinal{DLLName: "shell32.dll", Ordinal: 680, FriendlyName: strPtr("IsUserAnAdmin")}, ord)

	_, err = FromParts(strPtr("GetProcAddress"), strPtr("kernel32.dll"), intPtr(1), nil)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = FromParts(nil, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = FromParts(nil, strPtr("shell32.dll"), nil, nil)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestPartsRoundTrip(t *testing.T) {
	for _, id := range []Identity{
		Named{RawName: "DllMain"},
		Ordinal{DLLName: "comctl32.dll", Ordinal: 17, FriendlyName: strPtr("InitCommonControls")},
	} {
		raw, dll, ord, friendly := Parts(id)
		back, err := FromParts(raw, dll, ord, friendly)
		require.NoError(t, err)
		require.Equal(t, id, back)
	}
}

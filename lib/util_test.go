package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testInts []int

func (p *testInts) New() Pageable { return &testInts{} }

const testIntsPageName = "test-ints"

func init() {
	RegisteredPageables[testIntsPageName] = new(testInts)
}

func TestHexBytesJSON(t *testing.T) {
	original := HexBytes{0xde, 0xad, 0xbe, 0xef}
	bz, err := MarshalJSON(original)
	require.Nil(t, err)
	require.Equal(t, `"deadbeef"`, string(bz))
	var decoded HexBytes
	require.Nil(t, UnmarshalJSON(bz, &decoded))
	require.Equal(t, original, decoded)
	// invalid hex surfaces as a typed error
	_, e := NewHexBytesFromString("zz")
	require.NotNil(t, e)
	require.Equal(t, CodeStringToBytes, e.Code())
}

func TestPageLoadArray(t *testing.T) {
	page, results := NewPage(PageParams{PageNumber: 2, PerPage: 2}, testIntsPageName), new(testInts)
	err := page.LoadArray([]int{1, 2, 3, 4, 5}, results, func(i any) ErrorI {
		n, ok := i.(int)
		if !ok {
			return ErrInvalidArgument()
		}
		*results = append(*results, n)
		return nil
	})
	require.Nil(t, err)
	// the second page of two starts at the third element
	require.Equal(t, 3, (*results)[0])
	require.Equal(t, 4, (*results)[1])
	require.Equal(t, 2, page.Count)
	require.Equal(t, 5, page.TotalCount)
	require.Equal(t, 3, page.TotalPages)
}

func TestPageJSONRoundTrip(t *testing.T) {
	page, results := NewPage(PageParams{PageNumber: 1, PerPage: 10}, testIntsPageName), new(testInts)
	err := page.LoadArray([]int{7, 8}, results, func(i any) ErrorI {
		*results = append(*results, i.(int))
		return nil
	})
	require.Nil(t, err)
	bz, err := MarshalJSON(page)
	require.Nil(t, err)
	decoded := new(Page)
	require.Nil(t, UnmarshalJSON(bz, decoded))
	require.Equal(t, page.Count, decoded.Count)
	require.Equal(t, testIntsPageName, decoded.Type)
	require.Equal(t, &testInts{7, 8}, decoded.Results)
}

func TestPageUnknownPageable(t *testing.T) {
	decoded := new(Page)
	err := UnmarshalJSON([]byte(`{"type":"never-registered","results":[]}`), decoded)
	require.NotNil(t, err)
}

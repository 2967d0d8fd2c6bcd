package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestDetectOS(t *testing.T) {
	tests := []struct {
		goos   string
		kernel string
		want   OS
	}{
		{"windows", "", Windows},
		{"darwin", "Darwin", Mac},
		{"linux", "Linux", Linux},
		{"freebsd", "FreeBSD", Other},
		{"linux", "", Other},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.kernel, func(t *testing.T) {
			got := detectOS(tt.goos, func() string { return tt.kernel })
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptor(t *testing.T) {
	require.Equal(t, Descriptor{OS: Windows, Generator: "msvs", OutputDir: "out_win"}, For(Windows))
	require.Equal(t, Descriptor{OS: Mac, Generator: "xcode", OutputDir: "out_mac"}, For(Mac))
	require.Equal(t, Descriptor{OS: Linux, Generator: "make", OutputDir: "out_linux"}, For(Linux))
	require.Equal(t, Descriptor{OS: Other, Generator: "make", OutputDir: ""}, For(Other))
}

func fakeProber(env map[string]string, files map[string]string, output string, outErr error) *Prober {
	return &Prober{
		Getenv: func(k string) string { return env[k] },
		ReadFile: func(name string) ([]byte, error) {
			data, ok := files[name]
			if !ok {
				return nil, os.ErrNotExist
			}
			return []byte(data), nil
		},
		Output: func(string, ...string) ([]byte, error) {
			return []byte(output), outErr
		},
	}
}

func TestProcessorCount(t *testing.T) {
	cpuinfo := "processor\t: 0\nvendor_id\t: GenuineIntel\n\nprocessor\t: 1\nvendor_id\t: GenuineIntel\n"

	tests := []struct {
		name    string
		os      OS
		prober  *Prober
		want    int
		wantErr bool
	}{
		{"windows env", Windows, fakeProber(map[string]string{"NUMBER_OF_PROCESSORS": "8"}, nil, "", nil), 8, false},
		{"windows env missing", Windows, fakeProber(nil, nil, "", nil), 0, true},
		{"windows env garbage", Windows, fakeProber(map[string]string{"NUMBER_OF_PROCESSORS": "many"}, nil, "", nil), 0, true},
		{"mac sysctl", Mac, fakeProber(nil, nil, "12\n", nil), 12, false},
		{"mac sysctl fails", Mac, fakeProber(nil, nil, "", errors.New("boom")), 0, true},
		{"linux cpuinfo", Linux, fakeProber(nil, map[string]string{cpuInfoPath: cpuinfo}, "", nil), 2, false},
		{"linux cpuinfo without vendor", Linux, fakeProber(nil, map[string]string{cpuInfoPath: "processor : 0\n"}, "", nil), 1, false},
		{"linux cpuinfo missing", Linux, fakeProber(nil, nil, "", nil), 0, true},
		{"other", Other, fakeProber(nil, nil, "", nil), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.prober.ProcessorCount(tt.os)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestProcessorCountAtLeastOne_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	osGen := gen.OneConstOf(Windows, Mac, Linux, Other)

	properties.Property("successful counts are >= 1 on every platform", prop.ForAll(
		func(o OS, n int) bool {
			raw := fmt.Sprintf("%d", n)
			cpuinfo := strings.Repeat("vendor_id : x\n", n)
			p := fakeProber(
				map[string]string{"NUMBER_OF_PROCESSORS": raw},
				map[string]string{cpuInfoPath: cpuinfo},
				raw+"\n", nil)
			count, err := p.ProcessorCount(o)
			return err == nil && count >= 1
		},
		osGen,
		gen.IntRange(0, 256),
	))

	properties.TestingRun(t)
}

func TestProcessorCountHost(t *testing.T) {
	d := Detect()
	n, err := ProcessorCount(d.OS)
	if err != nil {
		t.Skipf("host processor count unavailable: %v", err)
	}
	require.GreaterOrEqual(t, n, 1)
}

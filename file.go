package rawimg

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/rawimg/pixel"
)

// ReadFile decodes the file at path, picking the decoder by extension.
func ReadFile(path string, f *pixel.Format) (*pixel.Image, error) {
	return ReadFileWithOptions(path, f, nil)
}

// ReadFileWithOptions is ReadFile with opts. PSD files are streamed, the
// other formats are read into memory first.
func ReadFileWithOptions(path string, f *pixel.Format, opts *Options) (*pixel.Image, error) {
	t, ok := TypeFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = file.Close() }()

	if t == TypePSD {
		return DecodeReaderWithOptions(t, f, bufio.NewReader(file), opts)
	}

	buf, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrReadFile, path, err)
	}
	return DecodeWithOptions(t, f, buf, 0, opts)
}

// WriteFile encodes img with Encode, picking the type by extension.
func WriteFile(path string, img *pixel.Image) error {
	t, ok := TypeFromPath(path)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExtension, path)
	}

	data, err := Encode(t, img)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("%w: %q: %v", ErrWriteFile, path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrWriteFile, path, err)
	}
	return nil
}

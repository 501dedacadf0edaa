package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
)

// gltfParser reads a glTF or GLB document through a FileSystem and loads every buffer
// it references. It is used once per document.
type gltfParser struct {
	files platform.FileSystem
	path  string
	bin   []byte
}

func newGLTFParser(files platform.FileSystem, path string) *gltfParser {
	return &gltfParser{files: files, path: path}
}

// parse reads the document at p.path. GLB is detected by extension or magic number.
func (p *gltfParser) parse() (*gltfDocument, error) {
	data, err := p.files.LoadBytes(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %q: %w", p.path, err)
	}

	isGLB := strings.EqualFold(path.Ext(p.path), ".glb") ||
		(len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic)
	if isGLB {
		data, err = p.splitGLB(data)
		if err != nil {
			return nil, err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, resource.NewConfigError(p.path, "", "", fmt.Errorf("%w: %v", resource.ErrMalformed, err))
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, resource.NewConfigError(p.path, "asset.version", doc.Asset.Version, resource.ErrUnsupported)
	}
	if len(doc.ExtensionsRequired) > 0 {
		return nil, resource.NewConfigError(p.path, "extensionsRequired", strings.Join(doc.ExtensionsRequired, ","), resource.ErrUnsupported)
	}

	if err := p.loadBuffers(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// splitGLB returns the JSON chunk of a GLB container and keeps the BIN chunk for buffer 0.
func (p *gltfParser) splitGLB(data []byte) ([]byte, error) {
	malformed := func(field string, cause error) error {
		return resource.NewConfigError(p.path, field, "", fmt.Errorf("%w: %v", resource.ErrMalformed, cause))
	}

	r := bytes.NewReader(data)
	var header glbHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, malformed("glb.header", err)
	}
	if header.Magic != glbMagic {
		return nil, malformed("glb.magic", fmt.Errorf("got %#x", header.Magic))
	}
	if header.Version != glbVersion {
		return nil, resource.NewConfigError(p.path, "glb.version", fmt.Sprint(header.Version), resource.ErrUnsupported)
	}

	var jsonChunk []byte
	for {
		var chunk glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, malformed("glb.chunk", err)
		}
		if int64(chunk.Length) > int64(r.Len()) {
			return nil, malformed("glb.chunk", fmt.Errorf("chunk length %d exceeds the %d remaining bytes", chunk.Length, r.Len()))
		}
		body := make([]byte, chunk.Length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, malformed("glb.chunk", err)
		}
		switch chunk.Type {
		case glbChunkJSON:
			if jsonChunk == nil {
				jsonChunk = body
			}
		case glbChunkBIN:
			if p.bin == nil {
				p.bin = body
			}
		}
	}

	if jsonChunk == nil {
		return nil, resource.NewConfigError(p.path, "glb.json", "", resource.ErrMissingField)
	}
	return jsonChunk, nil
}

// loadBuffers fills Data for every buffer from the GLB BIN chunk, a data URI, or a file
// relative to the document.
func (p *gltfParser) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]
		field := fmt.Sprintf("buffers[%d]", i)

		switch {
		case buf.URI == "" && i == 0 && p.bin != nil:
			buf.Data = p.bin
		case buf.URI == "":
			return resource.NewConfigError(p.path, field+".uri", "", resource.ErrMissingField)
		case strings.HasPrefix(buf.URI, "data:"):
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return resource.NewConfigError(p.path, field+".uri", "", err)
			}
			buf.Data = data
		default:
			data, err := p.loadExternal(field, buf.URI)
			if err != nil {
				return err
			}
			buf.Data = data
		}

		if buf.ByteLength < 0 {
			return resource.NewConfigError(p.path, field+".byteLength", fmt.Sprint(buf.ByteLength), resource.ErrMalformed)
		}
		if len(buf.Data) < buf.ByteLength {
			return resource.NewConfigError(p.path, field+".byteLength", fmt.Sprint(buf.ByteLength),
				fmt.Errorf("%w: only %d bytes available", resource.ErrMalformed, len(buf.Data)))
		}
		buf.Data = buf.Data[:buf.ByteLength]
	}
	return nil
}

func (p *gltfParser) loadExternal(field, uri string) ([]byte, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return nil, resource.NewConfigError(p.path, field+".uri", uri, fmt.Errorf("%w: %v", resource.ErrMalformed, err))
	}
	if ref.Scheme != "" || ref.Host != "" {
		return nil, resource.NewConfigError(p.path, field+".uri", uri, resource.ErrUnsupported)
	}
	target := platform.JoinRelative(p.path, ref.Path)
	data, err := p.files.LoadBytes(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read buffer %q of %q: %w", target, p.path, err)
	}
	return data, nil
}

// decodeDataURI decodes a base64 data URI of the form data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URI without payload", resource.ErrMalformed)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: data URI encoding %q", resource.ErrUnsupported, header)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", resource.ErrMalformed, err)
	}
	return data, nil
}

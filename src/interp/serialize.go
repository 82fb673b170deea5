package interp

import (
	"bytes"

	"github.com/thought-machine/rcore/src/serialize"
	"github.com/thought-machine/rcore/src/value"
)

func registerSerialize(i *Interpreter) {
	i.setNativeCode("serialize", serializeFunc, "object", "connection", "ascii", "xdr", "version", "refhook")
	i.setNativeCode("unserialize", unserializeFunc, "connection", "refhook")
	i.setNativeCode("saveRDS", saveRDS, "object", "file", "ascii", "version", "compress", "refhook").invisible = true
	i.setNativeCode("readRDS", readRDS, "file", "refhook")
}

// SerializeContext returns the context that ties serialized streams to this interpreter's
// environments and builtins.
func (i *Interpreter) SerializeContext() *serialize.Context {
	return &serialize.Context{
		Global:  i.Global,
		Base:    i.Base,
		Empty:   i.Empty,
		Builtin: i.builtinValue,
	}
}

func (c *callContext) serializeVersion(a *argList) int {
	version := a.intOr("version", 3)
	if version != 2 && version != 3 {
		c.errorf("version %d not supported", version)
	}
	return version
}

func serializeFunc(c *callContext, a *argList) value.Value {
	if a.has("connection") && !value.IsNull(a.value("connection")) {
		c.errorf("only serialization to a raw vector is supported")
	} else if a.flagOr("ascii", false) {
		c.errorf("ascii serialization is not supported")
	}
	var buf bytes.Buffer
	c.check(serialize.Marshal(&buf, a.value("object"), c.serializeVersion(a), c.i.SerializeContext()))
	return value.RawOf(buf.Bytes()...)
}

func unserializeFunc(c *callContext, a *argList) value.Value {
	raw, ok := a.value("connection").(*value.Raw)
	if !ok {
		c.errorf("character vectors are no longer accepted by unserialize()")
	}
	v, err := serialize.Unmarshal(bytes.NewReader(raw.Data()), c.i.SerializeContext())
	if err != nil {
		c.errorf("%s", err)
	}
	return v
}

// compression resolves the compress argument of saveRDS.
func (c *callContext) compression(a *argList) serialize.Compression {
	if !a.has("compress") {
		return serialize.Gzip
	}
	v := a.value("compress")
	if b, ok := v.(*value.Logical); ok {
		if flag, ok := asFlag(b); ok && !flag {
			return serialize.None
		}
		return serialize.Gzip
	}
	comp, err := serialize.ParseCompression(a.str("compress"))
	if err != nil {
		c.errorf("%s", err)
	}
	return comp
}

func saveRDS(c *callContext, a *argList) value.Value {
	file := a.str("file")
	opts := serialize.RDSOptions{
		Version:     c.serializeVersion(a),
		Compression: c.compression(a),
		Context:     c.i.SerializeContext(),
	}
	if err := serialize.SaveRDS(file, a.value("object"), opts); err != nil {
		c.errorf("%s", err)
	}
	log.Debug("Saved RDS file %s (%s)", file, opts.Compression)
	return value.Null
}

func readRDS(c *callContext, a *argList) value.Value {
	file := a.str("file")
	v, err := serialize.LoadRDS(file, c.i.SerializeContext())
	if err != nil {
		c.errorf("error reading from connection: %s", err)
	}
	return v
}

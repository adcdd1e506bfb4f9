package hcl

import (
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/buildgrid/internal/config"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// Encode renders m as a pipeline file.
func Encode(m *config.Model) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	pipeline := body.AppendNewBlock("pipeline", nil).Body()
	stages := make([]cty.Value, len(m.Pipeline.Stages))
	for i, s := range m.Pipeline.Stages {
		stages[i] = cty.StringVal(s.String())
	}
	if len(stages) > 0 {
		pipeline.SetAttributeValue("stages", cty.ListVal(stages))
	}
	pipeline.SetAttributeValue("checkpoint_stage", cty.StringVal(m.Pipeline.CheckpointStage.String()))

	for _, rt := range m.Runtimes {
		body.AppendNewline()
		body.AppendNewBlock("runtime", []string{string(rt)})
	}

	if m.Monitor != nil {
		body.AppendNewline()
		monitor := body.AppendNewBlock("monitor", nil).Body()
		monitor.SetAttributeValue("first", cty.StringVal(string(m.Monitor.First)))
		monitor.SetAttributeValue("second", cty.StringVal(string(m.Monitor.Second)))
	}

	ids := make([]string, 0, len(m.Plugins))
	for id := range m.Plugins {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := m.Plugins[model.Identifier(id)]
		body.AppendNewline()
		pb := body.AppendNewBlock("plugin", []string{id}).Body()
		pb.SetAttributeValue("enabled", cty.BoolVal(p.Enabled))
		keys := make([]string, 0, len(p.Settings))
		for k := range p.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pb.SetAttributeValue(k, p.Settings[k])
		}
	}

	for _, k := range m.Modules {
		body.AppendNewline()
		mb := body.AppendNewBlock("module", []string{k.Name}).Body()
		mb.SetAttributeRaw("type", typeTokens(k.Type))
	}

	return hclwrite.Format(f.Bytes())
}

// WriteDefault writes the default pipeline file to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create pipeline file: %w", err)
	}
	if _, err := f.Write(Encode(config.Default())); err != nil {
		f.Close()
		return fmt.Errorf("failed to write pipeline file: %w", err)
	}
	return f.Close()
}

// typeTokens renders ty as the type expression typeExprToCtyType parses.
func typeTokens(ty cty.Type) hclwrite.Tokens {
	switch {
	case ty.Equals(cty.String):
		return hclwrite.TokensForIdentifier("string")
	case ty.Equals(cty.Number):
		return hclwrite.TokensForIdentifier("number")
	case ty.Equals(cty.Bool):
		return hclwrite.TokensForIdentifier("bool")
	case ty.IsListType():
		return hclwrite.TokensForFunctionCall("list", typeTokens(ty.ElementType()))
	case ty.IsMapType():
		return hclwrite.TokensForFunctionCall("map", typeTokens(ty.ElementType()))
	case ty.IsSetType():
		return hclwrite.TokensForFunctionCall("set", typeTokens(ty.ElementType()))
	case ty.IsObjectType():
		attrTypes := ty.AttributeTypes()
		names := make([]string, 0, len(attrTypes))
		for name := range attrTypes {
			names = append(names, name)
		}
		sort.Strings(names)
		attrs := make([]hclwrite.ObjectAttrTokens, len(names))
		for i, name := range names {
			attrs[i] = hclwrite.ObjectAttrTokens{
				Name:  hclwrite.TokensForIdentifier(name),
				Value: typeTokens(attrTypes[name]),
			}
		}
		return hclwrite.TokensForFunctionCall("object", hclwrite.TokensForObject(attrs))
	default:
		return hclwrite.TokensForIdentifier("any")
	}
}

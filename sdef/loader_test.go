package sdef

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/fourcc"
)

const finderSdef = `<?xml version="1.0" encoding="UTF-8"?>
<dictionary title="Finder Terminology">
  <suite name="Standard Suite" code="core">
    <class name="application" code="capp" description="The application">
      <property name="name" code="pnam" type="text" access="r"/>
      <property name="version" code="vers" type="text" access="r" hidden="yes"/>
      <element type="window"/>
      <element type="disk"/>
    </class>
    <class name="window" code="cwin" plural="windows">
      <property name="name" code="pnam" type="text" access="r"/>
      <property name="index" code="pidx" type="integer" access="rw"/>
    </class>
    <command name="open" code="aevtodoc" description="Open the specified object(s)"/>
  </suite>
  <suite name="Finder Suite" code="fndr">
    <class name="disk" code="cdis" plural="disks" inherits="container"/>
    <class name="container" code="ctnr" inherits="item">
      <element type="item"/>
    </class>
    <class name="item" code="cobj" plural="items">
      <property name="id" code="ID  " type="integer" access="r"/>
    </class>
    <class-extension extends="window">
      <property name="zoomed" code="pzum" type="boolean" access="rw"/>
    </class-extension>
    <enumeration name="priv" code="priv">
      <enumerator name="read only" code="read"/>
      <enumerator name="read write" code="rdwr"/>
    </enumeration>
  </suite>
</dictionary>`

func TestLoadString(t *testing.T) {
	dict, err := NewLoader().LoadString(finderSdef, ".")
	assert.NoError(t, err)

	app := dict.FindClass("application")
	assert.NotZero(t, app)
	assert.Equal(t, fourcc.MustParse("capp"), app.Code)
	assert.Equal(t, 2, len(app.Elements))

	window := dict.FindClass("windows")
	assert.NotZero(t, window)
	assert.Equal(t, "window", window.Name)

	// hidden attribute
	assert.False(t, app.Properties[0].Hidden)
	assert.True(t, app.Properties[1].Hidden)

	// class-extension appended to the earlier suite's class
	assert.Equal(t, 3, len(window.Properties))
	assert.Equal(t, "zoomed", window.Properties[2].Name)

	// inheritance across suites
	disk := dict.FindClass("disk")
	properties := dict.AllProperties(disk)
	assert.Equal(t, 1, len(properties))
	assert.Equal(t, "id", properties[0].Name)

	enum := dict.FindEnum("priv")
	assert.NotZero(t, enum)
	assert.Equal(t, 2, len(enum.Enumerators))
	assert.Equal(t, "read only", enum.Enumerators[0].Name)

	command := dict.FindCommand("open")
	assert.NotZero(t, command)
	assert.Equal(t, "aevtodoc", command.Code)
}

func TestLoadErrors(t *testing.T) {
	loader := NewLoader()

	_, err := loader.LoadString("not xml at all <", ".")
	assert.IsError(t, err, osaquery.ErrMalformedDictionary)

	_, err = loader.LoadString(`<?xml version="1.0"?><terms/>`, ".")
	assert.IsError(t, err, osaquery.ErrMalformedDictionary)

	_, err = loader.LoadString(`<dictionary><suite name="s" code="s   "><class code="cxxx"/></suite></dictionary>`, ".")
	assert.IsError(t, err, osaquery.ErrMissingAttribute)

	_, err = loader.LoadString(`<dictionary><suite name="s" code="s   "><class name="thing"/></suite></dictionary>`, ".")
	assert.IsError(t, err, osaquery.ErrMissingAttribute)

	_, err = loader.LoadString(`<dictionary><suite name="s" code="s   "><class name="thing" code="toolong"/></suite></dictionary>`, ".")
	assert.IsError(t, err, fourcc.ErrCodeLength)

	_, err = loader.LoadString(`<dictionary><suite name="s" code="s   "><class-extension extends="ghost"/></suite></dictionary>`, ".")
	assert.IsError(t, err, osaquery.ErrUnknownExtensionTarget)
}

func TestIncludeSubstitution(t *testing.T) {
	dir := t.TempDir()

	shared := `<dictionary>
  <suite name="Shared Suite" code="shar">
    <class name="item" code="cobj" plural="items">
      <property name="id" code="ID  " type="integer"/>
    </class>
  </suite>
</dictionary>`

	main := `<dictionary>
  <xi:include href="shared.sdef"/>
  <suite name="App Suite" code="apps">
    <class name="application" code="capp">
      <element type="item"/>
    </class>
  </suite>
</dictionary>`

	assert.NoError(t, os.WriteFile(filepath.Join(dir, "shared.sdef"), []byte(shared), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "main.sdef"), []byte(main), 0o644))

	dict, err := NewLoader().LoadFile(filepath.Join(dir, "main.sdef"))
	assert.NoError(t, err)

	assert.NotZero(t, dict.FindClass("items"))
	assert.NotZero(t, dict.FindClass("application"))
}

func TestIncludeCycleIsBounded(t *testing.T) {
	dir := t.TempDir()

	self := `<dictionary><xi:include href="self.sdef"/></dictionary>`
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "self.sdef"), []byte(self), 0o644))

	_, err := NewLoader().LoadFile(filepath.Join(dir, "self.sdef"))
	assert.IsError(t, err, osaquery.ErrIncludeDepth)
}

func TestSuiteMergeOnReload(t *testing.T) {
	doc := `<dictionary>
  <suite name="First" code="one ">
    <class name="document" code="docu" inherits="item">
      <property name="name" code="pnam" type="text"/>
    </class>
    <class name="item" code="cobj"/>
  </suite>
  <suite name="Second" code="two ">
    <class name="document" code="docu" inherits="document">
      <property name="modified" code="imod" type="boolean"/>
    </class>
  </suite>
</dictionary>`

	dict, err := NewLoader().LoadString(doc, ".")
	assert.NoError(t, err)

	document := dict.FindClass("document")
	assert.Equal(t, "item", document.Inherits)
	assert.Equal(t, 2, len(document.Properties))
	assert.Equal(t, 0, len(dict.Validate()))
}

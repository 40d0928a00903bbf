package note

// SchemaExample is a complete sample document exercising every supported
// block variant. Edit prompts include it so model output matches the schema.
const SchemaExample = `[{"id":"a5912cac-94e6-4e58-a676-65f30de19843","type":"heading","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left","level":1},"content":[{"type":"text","text":"Heading","styles":{}}],"children":[]},{"id":"1359bca2-b113-4c62-a7c2-a6b9dfe55ee7","type":"heading","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left","level":2},"content":[{"type":"text","text":"Heading","styles":{}}],"children":[]},{"id":"94202c43-e32f-4011-a5fe-81746edfcdde","type":"numberedListItem","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[{"type":"text","text":"numbered","styles":{}}],"children":[]},{"id":"950076f6-cac6-4f39-ae96-63bba0934870","type":"bulletListItem","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[{"type":"text","text":"bullet","styles":{}}],"children":[]},{"id":"fafb20b9-be57-4f1c-9034-0f81e538c2ca","type":"checkListItem","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left","checked":false},"content":[{"type":"text","text":"check","styles":{}}],"children":[]},{"id":"c5a16743-171d-4f0a-acd8-4aa5b7133c63","type":"paragraph","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[{"type":"text","text":"Paragraph","styles":{}}],"children":[]},{"id":"ab147517-625b-4067-a078-42ea96ef2115","type":"codeBlock","props":{"language":"python"},"content":[{"type":"text","text":"code","styles":{}}],"children":[]},{"id":"32c4879e-1f0f-4d17-b5cb-5ad8cd69457f","type":"table","props":{"textColor":"default"},"content":{"type":"tableContent","columnWidths":[null,null,null],"rows":[{"cells":[[{"type":"text","text":"t","styles":{}}],[{"type":"text","text":"a","styles":{}}],[{"type":"text","text":"b","styles":{}}]]},{"cells":[[{"type":"text","text":"l","styles":{}}],[{"type":"text","text":"e","styles":{}}],[]]}]},"children":[]},{"id":"a6c4eb71-a9e3-4297-8d57-289e52d75d8e","type":"paragraph","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[{"type":"text","text":"inline text: ","styles":{}},{"type":"text","text":"text, ","styles":{"bold":true}},{"type":"text","text":"text, ","styles":{"italic":true}},{"type":"text","text":"text,","styles":{"underline":true}},{"type":"text","text":" ","styles":{}},{"type":"text","text":"text,","styles":{"strike":true}},{"type":"text","text":" text","styles":{"textColor":"red"}}],"children":[]},{"id":"06c1bc43-af2b-4536-8250-5fef9e53f34b","type":"paragraph","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[{"type":"link","href":"https://example.com/audio.mp3","content":[{"type":"text","text":"link","styles":{"underline":true,"textColor":"blue"}}]}],"children":[]},{"id":"bdb645f1-8e05-49e0-8307-f258f6d0b21b","type":"paragraph","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[{"type":"text","text":"background","styles":{"backgroundColor":"purple"}}],"children":[{"id":"bc21d51b-a0a5-4209-8427-205c7569bd0b","type":"paragraph","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[{"type":"text","text":"nested block","styles":{}}],"children":[]}]},{"id":"756bc02f-0bcb-4219-8c2b-361c4a85cfd8","type":"image","props":{"backgroundColor":"default","textAlignment":"center","name":"grapefruit-slice","url":"https://example.com/grapefruit.jpg","caption":"https://example.com/grapefruit.jpg","showPreview":true,"previewWidth":512},"children":[]},{"id":"68525ebb-7648-4945-96b3-9e40e8508445","type":"video","props":{"backgroundColor":"default","textAlignment":"right","name":"flower.webm","url":"https://example.com/flower.webm","caption":"video","showPreview":true,"previewWidth":512},"children":[]},{"id":"db560f2e-c1b7-4f74-b913-ce6864c4c746","type":"audio","props":{"backgroundColor":"default","name":"roar.mp3","url":"https://example.com/roar.mp3","caption":"","showPreview":true},"children":[]},{"id":"b6051d7a-83a7-445e-95d6-baee60ffb211","type":"file","props":{"backgroundColor":"default","name":"resume.pdf","url":"https://example.com/resume.pdf","caption":"file"},"children":[]},{"id":"b32c0b17-36f3-4ac7-99d6-b690b1232817","type":"paragraph","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[],"children":[]}]`
